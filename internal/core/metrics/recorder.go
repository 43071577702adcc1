package metrics

import (
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const namespace = "upgrade"

// 握手结果标签
const (
	ResultEstablished = "established"
	ResultFailed      = "failed"
)

// Recorder 握手指标记录器
type Recorder struct {
	handshakes  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bytes       *prometheus.CounterVec

	bandwidth *Bandwidth
}

// NewRecorder 创建记录器并注册到 reg
//
// reg 为 nil 时使用 prometheus.DefaultRegisterer。
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshakes_total",
			Help:      "Number of finished connection handshakes by role and result.",
		}, []string{"role", "result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshake_stage_transitions_total",
			Help:      "Number of handshake state transitions by role and target stage.",
		}, []string{"role", "stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handshake_duration_seconds",
			Help:      "Time from handshake start to a terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"role"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handshake_bytes_total",
			Help:      "Bytes carried on upgrading connections by role and direction.",
		}, []string{"role", "direction"}),
		bandwidth: NewBandwidth(),
	}

	err := multierr.Combine(
		reg.Register(r.handshakes),
		reg.Register(r.transitions),
		reg.Register(r.duration),
		reg.Register(r.bytes),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Transition 记录一次状态迁移
func (r *Recorder) Transition(role, stage string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(role, stage).Inc()
}

// Finish 记录握手结束
//
// err 为 nil 表示连接已建立。
func (r *Recorder) Finish(role string, err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	result := ResultEstablished
	if err != nil {
		result = ResultFailed
	}
	r.handshakes.WithLabelValues(role, result).Inc()
	r.duration.WithLabelValues(role).Observe(elapsed.Seconds())
}

// Bandwidth 返回握手流量统计
func (r *Recorder) Bandwidth() Stats {
	if r == nil {
		return Stats{}
	}
	return r.bandwidth.Totals()
}

// MeterConn 包装 conn，统计经过它的字节数
//
// r 为 nil 时原样返回 conn。
func (r *Recorder) MeterConn(conn net.Conn, role string) net.Conn {
	if r == nil {
		return conn
	}
	return &meteredConn{
		Conn: conn,
		in:   r.bytes.WithLabelValues(role, "in"),
		out:  r.bytes.WithLabelValues(role, "out"),
		bw:   r.bandwidth,
	}
}

// meteredConn 统计读写字节数的 net.Conn
type meteredConn struct {
	net.Conn
	in  prometheus.Counter
	out prometheus.Counter
	bw  *Bandwidth
}

func (c *meteredConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.in.Add(float64(n))
		c.bw.LogRecv(n)
	}
	return n, err
}

func (c *meteredConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 {
		c.out.Add(float64(n))
		c.bw.LogSent(n)
	}
	return n, err
}
