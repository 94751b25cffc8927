// Package nats connects to JetStream and publishes catalog events to it.
package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/shopadmin/pkg/config"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Connect dials the server in cfg, opens JetStream and makes sure cfg.Stream
// captures subjects. The connection is closed again if any step fails.
func Connect(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger, subjects ...string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(cfg.Url,
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if err := EnsureStream(ctx, js, cfg.Stream, subjects...); err != nil {
		nc.Close()
		return nil, nil, err
	}
	return nc, js, nil
}

// EnsureStream creates the named stream capturing subjects. An existing
// stream of that name is left untouched.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string, subjects ...string) error {
	_, err := js.CreateStream(ctx, jetstream.StreamConfig{Name: name, Subjects: subjects})
	if errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}
