package upgrader

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-upgrade/config"
	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/metrics"
)

// Params Upgrader 依赖参数
type Params struct {
	fx.In

	Identity   *identity.Identity
	Metrics    *metrics.Recorder `optional:"true"`
	UnifiedCfg *config.Config    `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(
			ProvideUpgrader,
		),
	)
}

// ConfigFromUnified 从统一配置创建 Upgrader 配置
func ConfigFromUnified(cfg *config.Config, rec *metrics.Recorder) Config {
	c := Config{Metrics: rec}
	if cfg != nil {
		c.HandshakeTimeout = cfg.Handshake.Timeout.Duration()
	}
	return c
}

// ProvideUpgrader 提供 Upgrader（依赖注入）
func ProvideUpgrader(p Params) (*Upgrader, error) {
	return New(p.Identity, ConfigFromUnified(p.UnifiedCfg, p.Metrics))
}
