package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-upgrade/config"
)

// Params 指标模块依赖参数
type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Registry   *prometheus.Registry
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(
			prometheus.NewRegistry,
			ProvideRecorder,
			ProvideServer,
		),
		fx.Invoke(func(*Server) {}),
	)
}

// ProvideRecorder 按配置创建记录器，未启用时返回 nil
func ProvideRecorder(p Params) (*Recorder, error) {
	if p.UnifiedCfg == nil || !p.UnifiedCfg.Metrics.Enable {
		return nil, nil
	}
	return NewRecorder(p.Registry)
}

// ProvideServer 配置了导出地址时创建指标端点并挂到生命周期上
func ProvideServer(p Params) *Server {
	if p.UnifiedCfg == nil || p.UnifiedCfg.Metrics.Addr == "" {
		return nil
	}

	s := NewServer(p.UnifiedCfg.Metrics.Addr, p.Registry)
	p.Lifecycle.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
	return s
}
