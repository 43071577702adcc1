package upgrader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-upgrade/internal/core/security/noise"
)

func TestStage_String(t *testing.T) {
	assert.Equal(t, "initialization", StageInitialization.String())
	assert.Equal(t, "negotiation", StageNegotiation.String())
	assert.Equal(t, "noise", StageNoise.String())
	assert.Equal(t, "multiplex", StageMultiplex.String())
	assert.Equal(t, "established", StageEstablished.String())
	assert.Equal(t, "failed", StageFailed.String())
	assert.Equal(t, "stage(9)", Stage(9).String())

	assert.True(t, StageEstablished.Terminal())
	assert.True(t, StageFailed.Terminal())
	assert.False(t, StageMultiplex.Terminal())
}

func TestTransition(t *testing.T) {
	transport := &noise.Transport{}
	failed := Failed{Err: errors.New("boom")}

	tests := []struct {
		name  string
		from  State
		to    State
		valid bool
	}{
		{"初始化到协商", Initialization{}, Negotiation{}, true},
		{"协商到 Noise", Negotiation{}, NoiseStage{}, true},
		{"Noise 到多路复用", NoiseStage{}, Multiplex{Transport: transport}, true},
		{"多路复用到建立", Multiplex{Transport: transport}, Established{}, true},

		{"初始化失败", Initialization{}, failed, true},
		{"协商失败", Negotiation{}, failed, true},
		{"Noise 失败", NoiseStage{}, failed, true},
		{"多路复用失败", Multiplex{Transport: transport}, failed, true},

		{"跳过阶段", Initialization{}, NoiseStage{}, false},
		{"直接建立", Negotiation{}, Established{}, false},
		{"回退", NoiseStage{}, Negotiation{}, false},
		{"停留", Negotiation{}, Negotiation{}, false},
		{"多路复用缺少 Transport", NoiseStage{}, Multiplex{}, false},
		{"建立后失败", Established{}, failed, false},
		{"失败后再失败", failed, failed, false},
		{"失败后继续", failed, Negotiation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}
