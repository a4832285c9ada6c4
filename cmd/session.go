package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/config"
	"github.com/HarshithaPadmanabha/StudyHub/internal/signaling"
)

// ConnectionContext holds the connected signaling client and the identity the
// local participant uses for this meeting.
type ConnectionContext struct {
	Client *signaling.Client
	Config *config.Config
	Self   signaling.PeerInfo
}

func NewConnectionContext(ctx context.Context, cfg *config.Config, log *slog.Logger) (*ConnectionContext, error) {
	client := signaling.NewClient(cfg.WebSocketURL,
		signaling.WithLogger(log),
		signaling.WithReconnectAttempts(cfg.ReconnectAttempts),
	)
	if err := client.Connect(ctx); err != nil {
		return nil, conference.NewError("connect to server", err)
	}

	return &ConnectionContext{
		Client: client,
		Config: cfg,
		Self:   signaling.PeerInfo{Identity: uuid.NewString(), Name: cfg.Name},
	}, nil
}

func (c *ConnectionContext) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, conference.NewError("load config", err)
	}

	if cfg.ForceRelay && cfg.GetTURNServers() == nil {
		return nil, fmt.Errorf("cannot force relay mode without TURN server configured")
	}

	return cfg, nil
}
