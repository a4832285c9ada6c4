package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/HarshithaPadmanabha/StudyHub/internal/conference"
	"github.com/HarshithaPadmanabha/StudyHub/internal/config"
	"github.com/HarshithaPadmanabha/StudyHub/internal/hub"
)

const shutdownTimeout = 5 * time.Second

var flagServeListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a room server",
	Long: `Run the room server that tracks who is in each room, relays chat and
forwards connection setup between participants. Media never passes through it.

Endpoints:
  /ws         participant connections
  /meet/<id>  join instructions for a room link
  /new        a fresh unused room name
  /health     liveness check
  /metrics    Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(flagServeListen)
		if err != nil {
			return conference.NewError("load config", err)
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.ServerConfig) error {
	log := slog.Default().With("component", "hub")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := hub.NewHub(hub.NewMetrics(reg), log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go h.Run(hubCtx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           hub.NewHandler(h, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting room server", "addr", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return conference.NewError("serve", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down room server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Websocket connections are hijacked; stopping the hub closes them.
	stopHub()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return conference.NewError("shutdown", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&flagServeListen, "listen", "l", "", "Address to listen on (default "+config.DefaultListenAddr+")")
}
