package config

import (
	"errors"
	"log/slog"

	"github.com/dep2p/go-upgrade/pkg/lib/log"
)

// HandshakeConfig 握手配置
type HandshakeConfig struct {
	// Timeout 单条连接握手的最长时间，0 表示不限制
	Timeout Duration `json:"timeout"`
}

// DefaultHandshakeConfig 返回默认握手配置
func DefaultHandshakeConfig() HandshakeConfig {
	return HandshakeConfig{}
}

// Validate 验证握手配置
func (c HandshakeConfig) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：trace/debug/info/warn/error
	Level string `json:"level"`

	// JSON 是否输出 JSON 格式
	JSON bool `json:"json"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level: "info",
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	_, err := log.ParseLevel(c.Level)
	return err
}

// SlogLevel 返回对应的 slog 级别
func (c LogConfig) SlogLevel() (slog.Level, error) {
	return log.ParseLevel(c.Level)
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否记录握手指标
	Enable bool `json:"enable"`

	// Addr /metrics HTTP 导出地址，为空时只记录不导出
	Addr string `json:"addr,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Addr != "" && !c.Enable {
		return errors.New("addr set but metrics disabled")
	}
	return nil
}
