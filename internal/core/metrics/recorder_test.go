package metrics

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecorder_NilSafe nil 记录器的所有方法都是空操作
func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Transition("dialer", "negotiation")
		r.Finish("dialer", nil, time.Second)
	})
	assert.Equal(t, Stats{}, r.Bandwidth())

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	assert.Same(t, a, r.MeterConn(a, "dialer"))
}

// TestRecorder_Counts 测试计数器
func TestRecorder_Counts(t *testing.T) {
	r, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	r.Transition("dialer", "negotiation")
	r.Transition("dialer", "negotiation")
	r.Transition("listener", "failed")

	r.Finish("dialer", nil, 10*time.Millisecond)
	r.Finish("listener", errors.New("boom"), 5*time.Millisecond)
	r.Finish("listener", errors.New("boom"), 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.transitions.WithLabelValues("dialer", "negotiation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.transitions.WithLabelValues("listener", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.handshakes.WithLabelValues("dialer", ResultEstablished)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.handshakes.WithLabelValues("listener", ResultFailed)))
	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

// TestRecorder_DuplicateRegistration 同一 Registry 不能注册两次
func TestRecorder_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

// TestRecorder_MeterConn 测试连接字节统计
func TestRecorder_MeterConn(t *testing.T) {
	r, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	dialer := r.MeterConn(a, "dialer")
	listener := r.MeterConn(b, "listener")

	go func() {
		_, _ = dialer.Write([]byte("hello"))
	}()

	buf := make([]byte, 5)
	_, err = io.ReadFull(listener, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	assert.Equal(t, 5.0, testutil.ToFloat64(r.bytes.WithLabelValues("dialer", "out")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.bytes.WithLabelValues("listener", "in")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.bytes.WithLabelValues("dialer", "in")))

	// flow.Meter 的总量由后台每秒刷新
	assert.Eventually(t, func() bool {
		stats := r.Bandwidth()
		return stats.TotalIn == 5 && stats.TotalOut == 5
	}, 5*time.Second, 50*time.Millisecond)
}
