package ipapi

import "errors"

// Stage：失败发生的阶段标签
type Stage string

const (
	StageTransport Stage = "transport" // HTTP 执行与响应体收集
	StageEncoding  Stage = "encoding"  // UTF-8 文本解码
	StageParse     Stage = "parse"     // JSON 语法解析
	StageProject   Stage = "project"   // 字段投影
)

// 文档注释：带阶段标签的失败值
// 背景：网络、编码、解析、投影各阶段的错误统一为一种可上报类型，调用方通过 Stage
// 或 errors.Is/As 区分失败发生在哪一环；库内任何阶段失败都立即短路，不做重试。
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string { return "ipapi: " + string(e.Stage) + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ErrInvalidUTF8：响应体不是合法 UTF-8 文本，不做部分解码
var ErrInvalidUTF8 = errors.New("response body is not valid utf-8")

// ErrMissingQuery：响应缺少 query 回显字段
// 约束：query 是服务端实际解析地址的权威回显，缺失视为解码失败，
// 不回退为请求时给定的地址。
var ErrMissingQuery = errors.New("response missing query field")
