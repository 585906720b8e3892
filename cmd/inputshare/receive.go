package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edenriquez/inputshare/internal/config"
	"github.com/edenriquez/inputshare/internal/discovery"
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/hid"
	"github.com/edenriquez/inputshare/internal/session"
)

var receiveFlags struct {
	port       int
	edge       string
	configFile string
	tls        tlsFlags
}

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Run the controlled side of a handoff session: accept forwarded input and inject it locally",
	RunE:  runReceive,
}

func init() {
	receiveCmd.Flags().IntVar(&receiveFlags.port, "port", 0, "port to listen on (default from config)")
	receiveCmd.Flags().StringVar(&receiveFlags.edge, "edge", "left", "screen edge that returns control to the sender: left, right, topLeft, or topRight")
	receiveCmd.Flags().StringVar(&receiveFlags.configFile, "config", "", "path to inputshare.yaml (default: platform config dir)")
	addTLSFlags(receiveCmd, &receiveFlags.tls)
}

func runReceive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(receiveFlags.configFile)
	if err != nil {
		return err
	}
	initLogging(cfg)

	zone, err := edge.ParseZone(receiveFlags.edge)
	if err != nil {
		return argErrorf("%v", err)
	}

	port := receiveFlags.port
	if port == 0 {
		port = cfg.Port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tlsConfig, err := resolveTLS(receiveFlags.tls, true)
	if err != nil {
		return err
	}

	geom, err := loadGeometry()
	if err != nil {
		return err
	}

	injector, err := hid.NewInjector()
	if err != nil {
		return fmt.Errorf("no input injection support on this platform: %w", err)
	}

	if cfg.DiscoveryEnabled {
		adv, err := discovery.Advertise(cfg.DeviceName)
		if err != nil {
			cliLog.Warn("mDNS advertise failed, peer must dial by address", "error", err)
		} else {
			defer adv.Close()
		}
	}

	sessCfg := buildSessionConfig(cfg, geom, edge.ZoneRight, zone)
	ctrl := session.New(sessCfg, nil, injector, logObserver{})
	defer ctrl.Close(context.Background())

	addr := fmt.Sprintf(":%d", port)
	cliLog.Info("listening", "addr", addr, "edge", zone)
	return ctrl.RunReceiver(ctx, addr, tlsConfig)
}
