package session

import (
	"context"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/config"
	"github.com/open-cuss/cuss2-go/pkg/connection"
)

// TransportConfig maps a loaded configuration onto connection settings.
// Callers may attach loggers to the result before connecting.
func TransportConfig(cfg *config.Config) connection.Config {
	return connection.Config{
		BaseURL:      cfg.BaseURL,
		TokenURL:     cfg.TokenURL,
		DeviceID:     cfg.DeviceID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Retry: connection.RetryConfig{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: cfg.Retry.InitialDelay.Std(),
			MaxDelay:     cfg.Retry.MaxDelay.Std(),
			Multiplier:   cfg.Retry.Multiplier,
			Jitter:       cfg.Retry.Jitter,
		},
	}
}

// ConnectWithConfig opens a session from a loaded configuration: the
// connection tuning is mapped through, discovered components are
// polled at the configured interval, and the configured required kinds
// are marked after discovery.
func ConnectWithConfig(ctx context.Context, cfg *config.Config) (*Controller, error) {
	return ConnectWithTransport(ctx, TransportConfig(cfg), cfg)
}

// ConnectWithTransport opens a session using explicit connection
// settings and the remaining session tuning from the configuration.
func ConnectWithTransport(ctx context.Context, tc connection.Config, cfg *config.Config) (*Controller, error) {
	conn, err := connection.New(tc)
	if err != nil {
		return nil, err
	}

	c := New(conn)
	c.SetLogger(tc.Logger)
	c.SetPollInterval(cfg.PollInterval.Std())
	if err := c.Start(ctx); err != nil {
		_ = conn.Close(0, "initialization failed")
		return nil, err
	}

	kinds := make([]component.Kind, 0, len(cfg.RequiredComponents))
	for _, name := range cfg.RequiredComponents {
		if kind := component.ParseKind(name); kind != component.KindUnknown {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) > 0 {
		c.SetRequired(kinds...)
	}
	return c, nil
}
