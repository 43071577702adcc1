package upgrader

import "errors"

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("upgrader: identity is nil")

	// ErrNilConn 底层连接为空
	ErrNilConn = errors.New("upgrader: connection is nil")

	// ErrAlreadyStarted 一条连接只能握手一次
	ErrAlreadyStarted = errors.New("upgrader: handshake already started")

	// ErrInvalidTransition 非法的状态迁移
	ErrInvalidTransition = errors.New("upgrader: invalid state transition")

	// ErrProtocolMismatch 对端回应的协议与期望不一致
	ErrProtocolMismatch = errors.New("upgrader: protocol mismatch")

	// ErrHandshakeFailed 握手失败
	ErrHandshakeFailed = errors.New("upgrader: handshake failed")
)
