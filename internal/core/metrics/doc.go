// Package metrics 记录连接升级的监控指标
//
// Recorder 基于 Prometheus 客户端，提供：
//   - upgrade_handshakes_total{role,result}: 握手结果计数
//   - upgrade_handshake_stage_transitions_total{role,stage}: 状态迁移计数
//   - upgrade_handshake_duration_seconds{role}: 握手耗时
//   - upgrade_handshake_bytes_total{role,direction}: 握手期间收发的字节数
//
// 另外通过 go-flow-metrics 维护握手流量的速率（EWMA），见 Bandwidth。
//
// 所有方法对 nil *Recorder 安全，未启用指标时调用方无需判空。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	rec, _ := metrics.NewRecorder(reg)
//
//	conn = rec.MeterConn(conn, "dialer")
//	rec.Transition("dialer", "negotiation")
//	rec.Finish("dialer", err, time.Since(start))
//
// # Fx 模块
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    metrics.Module(),
//	)
//
// 配置了 Metrics.Addr 时，模块会在生命周期内启动 /metrics HTTP 端点。
package metrics
