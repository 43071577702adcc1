package upgrader

import (
	"io"

	"github.com/dep2p/go-upgrade/internal/core/identity"
	"github.com/dep2p/go-upgrade/internal/core/multistream"
	"github.com/dep2p/go-upgrade/internal/core/security/noise"
)

// Role 连接中的角色
type Role int

const (
	// Dialer 主动发起连接的一方，担任 Noise 发起方
	Dialer Role = iota
	// Listener 接受连接的一方，担任 Noise 响应方
	Listener
)

// String 返回角色名
func (r Role) String() string {
	if r == Listener {
		return "listener"
	}
	return "dialer"
}

// steps 每个非终态阶段在某个角色下的动作
type steps interface {
	// negotiate 在 Negotiation 阶段协商安全协议
	negotiate(rw io.ReadWriter) (bool, error)

	// secure 在 NoiseStage 阶段完成 XX 握手
	secure(rw io.ReadWriter, id *identity.Identity) (*noise.Transport, noise.RemoteIdentity, error)

	// multiplex 在加密通道内协商一个协议
	multiplex(rw io.ReadWriter, t *noise.Transport, p multistream.Protocol) (bool, error)
}

func stepsFor(r Role) steps {
	if r == Listener {
		return listenerSteps{}
	}
	return dialerSteps{}
}

// ============================================================================
//                              拨号方
// ============================================================================

type dialerSteps struct{}

func (dialerSteps) negotiate(rw io.ReadWriter) (bool, error) {
	return multistream.Dial(rw, rw, multistream.Noise)
}

// secure 发送 hello，接收并校验响应方身份，再发送本地身份
func (dialerSteps) secure(rw io.ReadWriter, id *identity.Identity) (*noise.Transport, noise.RemoteIdentity, error) {
	hs, err := noise.NewInitiator()
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	if err := hs.Hello(rw); err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	remote, err := hs.RecvIdentity(rw)
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	if err := hs.SendIdentity(rw, id); err != nil {
		return nil, noise.RemoteIdentity{}, err
	}

	t, err := hs.IntoTransport()
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	return t, remote, nil
}

func (dialerSteps) multiplex(rw io.ReadWriter, t *noise.Transport, p multistream.Protocol) (bool, error) {
	return multistream.DialNoise(rw, rw, t, p)
}

// ============================================================================
//                              监听方
// ============================================================================

type listenerSteps struct{}

func (listenerSteps) negotiate(rw io.ReadWriter) (bool, error) {
	return multistream.Listen(rw, rw, multistream.Noise)
}

// secure 接收 hello，发送本地身份，再接收并校验发起方身份
func (listenerSteps) secure(rw io.ReadWriter, id *identity.Identity) (*noise.Transport, noise.RemoteIdentity, error) {
	hs, err := noise.NewResponder()
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	if err := hs.RecvHello(rw); err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	if err := hs.SendIdentity(rw, id); err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	remote, err := hs.RecvIdentity(rw)
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}

	t, err := hs.IntoTransport()
	if err != nil {
		return nil, noise.RemoteIdentity{}, err
	}
	return t, remote, nil
}

func (listenerSteps) multiplex(rw io.ReadWriter, t *noise.Transport, p multistream.Protocol) (bool, error) {
	return multistream.ListenNoise(rw, rw, t, p)
}
