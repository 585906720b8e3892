package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edenriquez/inputshare/internal/config"
	"github.com/edenriquez/inputshare/internal/discovery"
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/hid"
	"github.com/edenriquez/inputshare/internal/session"
)

var sendFlags struct {
	host       string
	port       int
	edge       string
	configFile string
	tls        tlsFlags
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Run the controlling side of a handoff session: capture local input and hand it to a peer",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendFlags.host, "host", "", "peer address (host:port, or host alone to use --port); discovered via mDNS if omitted")
	sendCmd.Flags().IntVar(&sendFlags.port, "port", 0, "peer port (default from config, used when --host has no port)")
	sendCmd.Flags().StringVar(&sendFlags.edge, "edge", "right", "screen edge that hands off control: left, right, topLeft, or topRight")
	sendCmd.Flags().StringVar(&sendFlags.configFile, "config", "", "path to inputshare.yaml (default: platform config dir)")
	addTLSFlags(sendCmd, &sendFlags.tls)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(sendFlags.configFile)
	if err != nil {
		return err
	}
	initLogging(cfg)

	zone, err := edge.ParseZone(sendFlags.edge)
	if err != nil {
		return argErrorf("%v", err)
	}

	port := sendFlags.port
	if port == 0 {
		port = cfg.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := sendFlags.host
	if addr == "" {
		cliLog.Info("no --host given, browsing LAN for a peer", "service", discovery.ServiceName)
		rec, err := discovery.Browse(ctx, port, 10*time.Second)
		if err != nil {
			return fmt.Errorf("discover peer: %w", err)
		}
		addr = rec.Endpoint
	} else if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, fmt.Sprintf("%d", port))
	}

	tlsConfig, err := resolveTLS(sendFlags.tls, false)
	if err != nil {
		return err
	}

	geom, err := loadGeometry()
	if err != nil {
		return err
	}

	capturer, err := hid.NewCapturer()
	if err != nil {
		return fmt.Errorf("no input capture support on this platform: %w", err)
	}
	injector, err := hid.NewInjector()
	if err != nil {
		return fmt.Errorf("no input injection support on this platform: %w", err)
	}

	sessCfg := buildSessionConfig(cfg, geom, zone, edge.ZoneLeft)
	ctrl := session.New(sessCfg, capturer, injector, logObserver{})
	defer ctrl.Close(context.Background())

	cliLog.Info("connecting", "addr", addr, "edge", zone)
	return ctrl.RunSender(ctx, addr, tlsConfig)
}
