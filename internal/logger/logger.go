// 包 logger：统一初始化与获取日志器，避免各模块重复配置；通过环境变量控制级别与输出格式
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// 进程级默认日志器，多处初始化会导致输出不一致，这里只保留一份
var defaultLogger *slog.Logger

// parseLevel：解析 LOG_LEVEL，未知值回退到 Info
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup：初始化默认日志器
// 背景：集中化日志配置，便于按环境统一调整级别与格式（LOG_LEVEL / LOG_FORMAT）
// 约束：输出目标固定为标准错误；不在此处管理文件句柄或外部聚合通道
func Setup() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L：获取默认日志器，未初始化时回退到 Setup
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

// With：派生带组件标识的子日志器，便于按模块过滤
func With(component string) *slog.Logger {
	return L().With("component", component)
}
