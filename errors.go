package upgrade

import "errors"

// 公共错误定义
var (
	// ErrNilListener 未提供监听 socket
	ErrNilListener = errors.New("upgrade: listener is nil")

	// ErrNilDialConn 未提供拨号连接
	ErrNilDialConn = errors.New("upgrade: dial connection is nil")

	// ErrAlreadyRunning 节点已在运行
	ErrAlreadyRunning = errors.New("upgrade: node already running")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("upgrade: node closed")
)
