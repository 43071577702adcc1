// Package log 提供统一日志接口
//
// 基于 Go 标准库 log/slog 封装。各组件通过 Logger("core/xxx") 获取
// 带组件名的懒加载 logger；进程入口通过 Setup 做一次性初始化。
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Setup 初始化进程默认 logger
//
// 只应在进程入口调用一次，核心组件内部不做任何全局配置。
//
// 参数：
//   - w: 输出目标
//   - level: 最低日志级别
//   - json: true 使用 JSON 格式，否则使用文本格式
func Setup(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// ParseLevel 解析日志级别字符串
//
// 支持 debug / info / warn / error（大小写不敏感），
// 以及 "trace"（映射为 debug，便于沿用常见的命令行习惯）。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 每次日志调用时都从 slog.Default() 获取最新的 handler，
// 因此包级变量在 Setup 之前声明也能输出到正确的位置。
//
//	var logger = log.Logger("core/upgrader")
//	logger.Info("连接已建立")
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) current() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.current().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.current().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.current().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.current().Error(msg, args...)
}

// DebugContext 带 context 的 Debug 日志
func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.current().DebugContext(ctx, msg, args...)
}

// InfoContext 带 context 的 Info 日志
func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.current().InfoContext(ctx, msg, args...)
}

// With 固化当前默认 handler 并附加属性
//
// 返回的 *slog.Logger 不再跟随 slog.Default() 变化，
// 适合绑定到生命周期明确的对象（例如单条连接）。
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.current().With(args...)
}
