// Package config 提供升级节点的统一配置
//
// 本包采用与组件一一对应的子配置：
//   - Peer: 主动拨号的对端地址
//   - Listen: 本地监听地址
//   - Handshake: 握手超时
//   - Log: 日志级别与格式
//   - Metrics: Prometheus 指标
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Apply(config.WithPeer("10.0.0.2", 30333))
//
//	// 从 JSON 文件加载
//	cfg, err := config.Load("upgrade.json")
package config

import (
	"errors"
	"fmt"
)

// Config 节点的完整配置
type Config struct {
	// Peer 主动拨号的对端
	Peer PeerConfig `json:"peer"`

	// Listen 本地监听地址
	Listen ListenConfig `json:"listen"`

	// Handshake 握手配置
	Handshake HandshakeConfig `json:"handshake"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
//
// 默认对端地址为空，使用前必须通过 WithPeer 或 JSON 指定。
func NewConfig() *Config {
	return &Config{
		Peer:      DefaultPeerConfig(),
		Listen:    DefaultListenConfig(),
		Handshake: DefaultHandshakeConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Peer.Validate(); err != nil {
		return fmt.Errorf("peer: %w", err)
	}
	if err := c.Listen.Validate(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if err := c.Handshake.Validate(); err != nil {
		return fmt.Errorf("handshake: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// ============================================================================
//                              Option
// ============================================================================

// Option 修改配置的函数
type Option func(*Config)

// Apply 依次应用选项，返回自身便于链式调用
func (c *Config) Apply(opts ...Option) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithPeer 设置拨号对端
func WithPeer(ip string, port int) Option {
	return func(c *Config) {
		c.Peer.IP = ip
		c.Peer.Port = port
	}
}

// WithListen 设置本地监听地址
func WithListen(ip string, port int) Option {
	return func(c *Config) {
		c.Listen.IP = ip
		c.Listen.Port = port
	}
}

// WithHandshakeTimeout 设置握手超时，0 表示不限制
func WithHandshakeTimeout(d Duration) Option {
	return func(c *Config) {
		c.Handshake.Timeout = d
	}
}

// WithLogLevel 设置日志级别
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.Log.Level = level
	}
}

// WithLogJSON 设置是否输出 JSON 格式日志
func WithLogJSON(json bool) Option {
	return func(c *Config) {
		c.Log.JSON = json
	}
}

// WithMetrics 启用指标并设置 HTTP 导出地址（为空则不导出）
func WithMetrics(addr string) Option {
	return func(c *Config) {
		c.Metrics.Enable = true
		c.Metrics.Addr = addr
	}
}
