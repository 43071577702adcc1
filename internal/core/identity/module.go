package identity

import "go.uber.org/fx"

// Module 返回 Fx 模块
//
// 每次进程启动生成一个临时身份；同一进程内所有连接共享该身份。
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(Generate),
	)
}
