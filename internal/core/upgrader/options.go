package upgrader

import (
	"log/slog"
	"time"

	"github.com/dep2p/go-upgrade/internal/core/metrics"
)

// Option Conn 的可选配置
type Option func(*Conn)

// WithLogger 使用指定的 logger，默认使用包级 logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics 记录握手指标，rec 可以为 nil
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Conn) {
		c.metrics = rec
	}
}

// WithTimeout 设置整个握手的截止时间，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.timeout = d
	}
}
