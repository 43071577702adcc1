// Package lib 包含基础设施工具库
//
// 本目录包含与握手状态机无关的通用工具库：
//
//   - log: 基于 slog 的组件日志封装
//   - proto/noise: Noise 握手 payload 的 protobuf 编解码
//
// # 使用示例
//
//	import (
//	    "github.com/dep2p/go-upgrade/pkg/lib/log"
//	    noisepb "github.com/dep2p/go-upgrade/pkg/lib/proto/noise"
//	)
package lib
