package multistream

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-upgrade/internal/core/security/noise"
	"github.com/dep2p/go-upgrade/pkg/lib/log"
)

var logger = log.Logger("core/multistream")

// Concurrent 在同一连接上并发读写协议标识
//
// 只用于第一次交换：双方都可能立刻先写，如果先读后写会互相阻塞。
// 读和写各自只完成一次，两者都结束后比较收到的字节与期望编码是否相同，
// 与对端写入先于还是晚于本端开始读取无关。
//
// 返回：
//   - bool: 收到的标识是否与 p 一致
//   - error: 读写任意一侧的 I/O 错误
func Concurrent(r io.Reader, w io.Writer, p Protocol) (bool, error) {
	expected := p.Encode()
	response := make([]byte, len(expected))

	var g errgroup.Group
	g.Go(func() error {
		if _, err := io.ReadFull(r, response); err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		logger.Debug("已读取", "protocol", p, "bytes", len(response))
		return nil
	})
	g.Go(func() error {
		if _, err := w.Write(expected); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		logger.Debug("已写入", "protocol", p, "bytes", len(expected))
		return nil
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	return bytes.Equal(response, expected), nil
}

// Dial 先写出协议标识，再读取等长的回应并比较
func Dial(r io.Reader, w io.Writer, p Protocol) (bool, error) {
	expected := p.Encode()
	if _, err := w.Write(expected); err != nil {
		return false, fmt.Errorf("write %s: %w", p, err)
	}

	response := make([]byte, len(expected))
	if _, err := io.ReadFull(r, response); err != nil {
		return false, fmt.Errorf("read %s response: %w", p, err)
	}
	logger.Debug("收到协商回应", "protocol", p, "bytes", len(response))

	return bytes.Equal(response, expected), nil
}

// Listen 读取对端提议的协议标识，解码后原样回显
//
// 已知协议回显其编码（确认），未知协议回显 "na\n"。
// 返回解码结果是否等于 p。回显总会先发出；连接握手把 false 视为
// 协商失败并终止握手，而不是只在 I/O 出错时失败。
func Listen(r io.Reader, w io.Writer, p Protocol) (bool, error) {
	encoded, err := ReadProtocol(r)
	if err != nil {
		return false, err
	}

	proposed, err := Decode(encoded)
	if err != nil {
		return false, err
	}
	logger.Debug("收到协议提议", "proposed", proposed, "expected", p)

	if _, err := w.Write(proposed.Encode()); err != nil {
		return false, fmt.Errorf("echo %s: %w", proposed, err)
	}
	return proposed == p, nil
}

// DialNoise 与 Dial 相同，但协议标识作为一条 Noise 传输消息收发
func DialNoise(r io.Reader, w io.Writer, t *noise.Transport, p Protocol) (bool, error) {
	expected := p.Encode()
	if _, err := noise.SendMessage(w, t, expected); err != nil {
		return false, fmt.Errorf("send %s: %w", p, err)
	}

	response, err := noise.RecvMessage(r, t)
	if err != nil {
		return false, fmt.Errorf("receive %s response: %w", p, err)
	}
	logger.Debug("收到加密协商回应", "protocol", p, "bytes", len(response))

	return bytes.Equal(response, expected), nil
}

// ListenNoise 与 Listen 相同，但协议标识作为一条 Noise 传输消息收发
//
// 返回 false 时连接握手同样终止，不会进入 Established。
func ListenNoise(r io.Reader, w io.Writer, t *noise.Transport, p Protocol) (bool, error) {
	encoded, err := noise.RecvMessage(r, t)
	if err != nil {
		return false, fmt.Errorf("receive proposal: %w", err)
	}

	proposed, err := Decode(encoded)
	if err != nil {
		return false, err
	}
	logger.Debug("收到加密协议提议", "proposed", proposed, "expected", p)

	if _, err := noise.SendMessage(w, t, proposed.Encode()); err != nil {
		return false, fmt.Errorf("echo %s: %w", proposed, err)
	}
	return proposed == p, nil
}
