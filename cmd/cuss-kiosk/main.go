// Command cuss-kiosk runs a minimal kiosk application against a
// platform: it connects, discovers the peripherals, declares itself
// online and reports every session event until interrupted.
//
// Usage:
//
//	cuss-kiosk -config client.yaml [-protocol-log kiosk.clog] [-verbose]
//
// The configuration file names the platform endpoints, credentials and
// session tuning; see pkg/config. With -protocol-log, every frame,
// heartbeat and state change is recorded for later analysis with
// cuss-log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/config"
	"github.com/open-cuss/cuss2-go/pkg/log"
	"github.com/open-cuss/cuss2-go/pkg/session"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

func main() {
	configPath := flag.String("config", "", "Path to the client configuration file (required)")
	protocolLog := flag.String("protocol-log", "", "Record protocol events to this file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*configPath, *protocolLog, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(configPath, protocolLog string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	tc := session.TransportConfig(cfg)
	tc.Logger = logger

	if protocolLog != "" {
		fl, err := log.NewFileLogger(protocolLog)
		if err != nil {
			return err
		}
		defer fl.Close()
		tc.ProtocolLogger = fl
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, err := session.ConnectWithTransport(ctx, tc, cfg)
	if err != nil {
		return err
	}

	ctrl.OnStateChange(func(pair wire.StateChangePair) {
		logger.Info("application state", "from", string(pair.Previous), "to", string(pair.Current))
	})
	ctrl.OnActivated(func(info session.ActivationInfo) {
		logger.Info("activated",
			"multi_tenant", info.MultiTenant,
			"accessible", info.AccessibleMode,
			"language", info.Language)
	})
	ctrl.OnDeactivated(func() {
		logger.Info("deactivated")
	})
	ctrl.OnComponentChange(func(dev component.Device) {
		logger.Info("component state",
			"component", dev.ID(),
			"kind", dev.Kind().String(),
			"ready", dev.Ready(),
			"status", string(dev.Status()))
	})
	ctrl.OnSessionTimeout(func() {
		logger.Info("passenger session timed out")
	})
	ctrl.OnError(func(err error) {
		logger.Warn("session error", "error", err)
	})
	ctrl.OnClose(func(code int, reason string) {
		logger.Info("connection closed", "code", code, "reason", reason)
		stop()
	})

	env := ctrl.Environment()
	logger.Info("session established",
		"device_id", env.DeviceID,
		"components", ctrl.Devices().Len(),
		"state", string(ctrl.State().Current))

	ctrl.SetOnline(true)

	<-ctx.Done()
	return ctrl.Close("operator shutdown")
}
