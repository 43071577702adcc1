package upgrader

import (
	"fmt"

	"github.com/dep2p/go-upgrade/internal/core/security/noise"
)

// Stage 状态的种类，按迁移顺序排列
type Stage int

const (
	StageInitialization Stage = iota
	StageNegotiation
	StageNoise
	StageMultiplex
	StageEstablished
	StageFailed
)

// String 返回阶段名
func (s Stage) String() string {
	switch s {
	case StageInitialization:
		return "initialization"
	case StageNegotiation:
		return "negotiation"
	case StageNoise:
		return "noise"
	case StageMultiplex:
		return "multiplex"
	case StageEstablished:
		return "established"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Terminal 是否为终态
func (s Stage) Terminal() bool {
	return s == StageEstablished || s == StageFailed
}

// State 连接状态
//
// 封闭接口，只有本包定义的六种状态实现它。
type State interface {
	Stage() Stage
	sealed()
}

// Initialization 初始状态，尚未交换任何字节
type Initialization struct{}

// Negotiation multistream 头已交换，准备协商安全协议
type Negotiation struct{}

// NoiseStage 已协商 /noise，进行 XX 握手
type NoiseStage struct{}

// Multiplex 安全通道已建立，在加密通道内协商多路复用器
type Multiplex struct {
	Transport *noise.Transport
}

// Established 握手成功
type Established struct{}

// Failed 握手失败
type Failed struct {
	Err error
}

func (Initialization) Stage() Stage { return StageInitialization }
func (Negotiation) Stage() Stage    { return StageNegotiation }
func (NoiseStage) Stage() Stage     { return StageNoise }
func (Multiplex) Stage() Stage      { return StageMultiplex }
func (Established) Stage() Stage    { return StageEstablished }
func (Failed) Stage() Stage         { return StageFailed }

func (Initialization) sealed() {}
func (Negotiation) sealed()    {}
func (NoiseStage) sealed()     {}
func (Multiplex) sealed()      {}
func (Established) sealed()    {}
func (Failed) sealed()         {}

// Transition 校验 from → to 是否合法
//
// 只允许前进到紧邻的下一个状态，或从任意非终态进入 Failed。
// 进入 Multiplex 时必须携带 Transport。
func Transition(from, to State) error {
	f, t := from.Stage(), to.Stage()
	if m, ok := to.(Multiplex); ok && m.Transport == nil {
		return fmt.Errorf("%w: multiplex without transport", ErrInvalidTransition)
	}
	switch {
	case f.Terminal():
	case t == StageFailed:
		return nil
	case t == f+1:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f, t)
}
