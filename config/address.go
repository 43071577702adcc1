package config

import (
	"errors"
	"fmt"
	"net"

	ma "github.com/multiformats/go-multiaddr"
)

// DefaultPeerPort 对端默认端口
const DefaultPeerPort = 30333

// PeerConfig 拨号对端配置
type PeerConfig struct {
	// IP 对端 IPv4 或 IPv6 地址
	IP string `json:"ip"`

	// Port 对端 TCP 端口
	Port int `json:"port"`
}

// DefaultPeerConfig 返回默认对端配置
func DefaultPeerConfig() PeerConfig {
	return PeerConfig{
		Port: DefaultPeerPort,
	}
}

// Validate 验证对端配置
func (c PeerConfig) Validate() error {
	if c.IP == "" {
		return errors.New("ip is required")
	}
	if net.ParseIP(c.IP) == nil {
		return fmt.Errorf("invalid ip %q", c.IP)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Multiaddr 返回对端的 TCP multiaddr
func (c PeerConfig) Multiaddr() (ma.Multiaddr, error) {
	return tcpMultiaddr(c.IP, c.Port)
}

// ListenConfig 本地监听配置
type ListenConfig struct {
	// IP 监听地址
	IP string `json:"ip"`

	// Port 监听端口，0 表示由系统分配
	Port int `json:"port"`
}

// DefaultListenConfig 返回默认监听配置：本地回环，临时端口
func DefaultListenConfig() ListenConfig {
	return ListenConfig{
		IP:   "127.0.0.1",
		Port: 0,
	}
}

// Validate 验证监听配置
func (c ListenConfig) Validate() error {
	if net.ParseIP(c.IP) == nil {
		return fmt.Errorf("invalid ip %q", c.IP)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

// Multiaddr 返回监听地址的 TCP multiaddr
func (c ListenConfig) Multiaddr() (ma.Multiaddr, error) {
	return tcpMultiaddr(c.IP, c.Port)
}

// tcpMultiaddr 根据地址族构造 /ip4 或 /ip6 的 TCP multiaddr
func tcpMultiaddr(host string, port int) (ma.Multiaddr, error) {
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("invalid ip %q", host)
	}

	family := "ip6"
	if ip4 := ip.To4(); ip4 != nil {
		family, ip = "ip4", ip4
	}

	addr, err := ma.NewMultiaddr(fmt.Sprintf("/%s/%s/tcp/%d", family, ip, port))
	if err != nil {
		return nil, fmt.Errorf("build multiaddr: %w", err)
	}
	return addr, nil
}
