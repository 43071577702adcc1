package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"TRACE", LevelDebug, false},
		{"", LevelInfo, false},
		{"info", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLazyLogger_FollowsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Logger("test/lazy")

	var first, second bytes.Buffer
	Setup(&first, LevelInfo, false)
	l.Info("第一条")

	Setup(&second, LevelInfo, true)
	l.Info("第二条")
	l.Debug("不会输出")

	assert.Contains(t, first.String(), "component=test/lazy")
	assert.Contains(t, first.String(), "第一条")
	assert.NotContains(t, first.String(), "第二条")

	assert.Contains(t, second.String(), `"component":"test/lazy"`)
	assert.Contains(t, second.String(), "第二条")
	assert.NotContains(t, second.String(), "不会输出")
}
