// Package main 提供 upgrade 命令行入口
//
// 用法：
//
//	upgrade [flags] <peer-ip>
//
// 节点先在本地地址监听，再拨号 <peer-ip>:<port>，
// 对拨号连接和每条入站连接分别完成升级握手。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	upgrade "github.com/dep2p/go-upgrade"
	"github.com/dep2p/go-upgrade/config"
	"github.com/dep2p/go-upgrade/pkg/lib/log"
)

var logger = log.Logger("upgrade/cmd")

// stopTimeout 关闭 fx 应用的最长时间
const stopTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	log.Setup(os.Stderr, level, cfg.Log.JSON)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, node, err := upgrade.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		if err := app.Stop(stopCtx); err != nil {
			logger.Warn("关闭失败", "error", err)
		}
	}()

	logger.Info("节点已启动", "peer", node.PeerID(), "listen", node.ListenAddr().String())
	return node.Run(ctx)
}

// parseFlags 解析命令行参数
//
// 配置优先级（从高到低）：命令行参数、-config 指定的配置文件、默认值。
func parseFlags(args []string, output io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("upgrade", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, "用法: upgrade [flags] <peer-ip>")
		fs.PrintDefaults()
	}

	var (
		configFile  = fs.String("config", "", "配置文件路径")
		port        = fs.Int("port", config.DefaultPeerPort, "对端端口")
		listenIP    = fs.String("listen-ip", "127.0.0.1", "本地监听地址")
		listenPort  = fs.Int("listen-port", 0, "本地监听端口（0 = 随机端口）")
		logLevel    = fs.String("log-level", "info", "日志级别 (trace/debug/info/warn/error)")
		logJSON     = fs.Bool("log-json", false, "输出 JSON 格式日志")
		metrics     = fs.Bool("metrics", false, "记录握手指标")
		metricsAddr = fs.String("metrics-addr", "", "/metrics 导出地址，例如 127.0.0.1:9100")
		timeout     config.Duration
	)
	fs.Var(&timeout, "timeout", "单条连接的握手超时（0 = 不限制）")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fs.NArg() > 0 {
		cfg.Apply(config.WithPeer(fs.Arg(0), cfg.Peer.Port))
	}
	if set["port"] {
		cfg.Peer.Port = *port
	}
	if set["listen-ip"] {
		cfg.Listen.IP = *listenIP
	}
	if set["listen-port"] {
		cfg.Listen.Port = *listenPort
	}
	if set["timeout"] {
		cfg.Apply(config.WithHandshakeTimeout(timeout))
	}
	if set["log-level"] {
		cfg.Apply(config.WithLogLevel(*logLevel))
	}
	if set["log-json"] {
		cfg.Apply(config.WithLogJSON(*logJSON))
	}
	if *metrics || *metricsAddr != "" {
		cfg.Apply(config.WithMetrics(*metricsAddr))
	}

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("只接受一个对端地址，收到 %d 个", fs.NArg())
	}
	if err := cfg.Validate(); err != nil {
		fs.Usage()
		return nil, fmt.Errorf("配置错误: %w", err)
	}
	return cfg, nil
}
