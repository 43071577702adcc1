package metrics

import (
	flow "github.com/libp2p/go-flow-metrics"
)

// Stats 流量统计快照
type Stats struct {
	TotalIn  int64
	TotalOut int64
	RateIn   float64
	RateOut  float64
}

// Bandwidth 带宽计量器
//
// 基于 flow.Meter，速率为指数加权移动平均。
// 总量与速率由后台 sweeper 每秒刷新一次，读取到的值会有最多一秒的滞后。
type Bandwidth struct {
	in  *flow.Meter
	out *flow.Meter
}

// NewBandwidth 创建带宽计量器
func NewBandwidth() *Bandwidth {
	return &Bandwidth{
		in:  flow.NewMeter(),
		out: flow.NewMeter(),
	}
}

// LogSent 记录发送字节数
func (b *Bandwidth) LogSent(n int) {
	b.out.Mark(uint64(n))
}

// LogRecv 记录接收字节数
func (b *Bandwidth) LogRecv(n int) {
	b.in.Mark(uint64(n))
}

// Totals 返回当前统计
func (b *Bandwidth) Totals() Stats {
	in := b.in.Snapshot()
	out := b.out.Snapshot()
	return Stats{
		TotalIn:  int64(in.Total),
		TotalOut: int64(out.Total),
		RateIn:   in.Rate,
		RateOut:  out.Rate,
	}
}
