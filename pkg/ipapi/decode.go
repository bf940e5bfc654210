package ipapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"
)

// Decode：将完整响应体解码为 Result
// 背景：顺序执行文本校验→JSON 解析→字段投影，任一阶段失败立即返回带阶段标签的
// 错误，不产生部分结果；独立导出以便脱离网络直接对内存文档测试。
// 约束：mobile/proxy 缺失或类型不符时静默取 false，成对字段遵循两半齐备才算存在
// 的规则，这些属于契约行为而非错误恢复。
func Decode(body []byte) (*Result, error) {
	if !utf8.Valid(body) {
		return nil, &Error{Stage: StageEncoding, Err: ErrInvalidUTF8}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}
	// 响应体必须恰好是一个 JSON 文档，首个值之后出现任何非空白内容都按语法错误处理
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected content after json document")
		}
		return nil, &Error{Stage: StageParse, Err: err}
	}
	return project(doc)
}

// project：把文档顶层命名字段映射到结果结构
// 背景：query 为必填回显，缺失时整体失败；其余字段按各自规则独立取值。
func project(doc map[string]any) (*Result, error) {
	q, ok := getString(doc, "query")
	if !ok {
		return nil, &Error{Stage: StageProject, Err: ErrMissingQuery}
	}
	return &Result{
		Query:            q,
		Country:          getNameAndCode(doc, "country", "countryCode"),
		Region:           getNameAndCode(doc, "regionName", "region"),
		City:             getOptString(doc, "city"),
		Zip:              getOptString(doc, "zip"),
		Location:         getCoordinates(doc, "lat", "lon"),
		Timezone:         getOptString(doc, "timezone"),
		ISP:              getOptString(doc, "isp"),
		Organization:     getOptString(doc, "org"),
		AutonomousSystem: getOptString(doc, "as"),
		Reverse:          getOptString(doc, "reverse"),
		Mobile:           getBool(doc, "mobile"),
		Proxy:            getBool(doc, "proxy"),
	}, nil
}

// getString：仅当键存在且值为 JSON 字符串时成功；null、缺失或其他类型均视为不存在
func getString(doc map[string]any, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func getOptString(doc map[string]any, key string) *string {
	if s, ok := getString(doc, key); ok {
		return &s
	}
	return nil
}

// getBool：缺失或非布尔时取 false，属于契约默认值
func getBool(doc map[string]any, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

// getNumber：接受任意 JSON 数字（整数或小数）
func getNumber(doc map[string]any, key string) (float64, bool) {
	n, ok := doc[key].(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// getNameAndCode：两次独立的字符串查找，任一缺失或为空则整对视为不存在
func getNameAndCode(doc map[string]any, nameKey, codeKey string) *NameAndCode {
	name, ok1 := getString(doc, nameKey)
	code, ok2 := getString(doc, codeKey)
	if !ok1 || !ok2 || name == "" || code == "" {
		return nil
	}
	return &NameAndCode{Name: name, Code: code}
}

// getCoordinates：两次独立的数值查找，任一缺失则整对视为不存在
func getCoordinates(doc map[string]any, latKey, lonKey string) *Coordinates {
	lat, ok1 := getNumber(doc, latKey)
	lon, ok2 := getNumber(doc, lonKey)
	if !ok1 || !ok2 {
		return nil
	}
	return &Coordinates{Latitude: lat, Longitude: lon}
}
