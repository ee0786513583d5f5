package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cardforge/cardforge-go/internal/llm"
	"github.com/cardforge/cardforge-go/internal/metrics"
	"github.com/cardforge/cardforge-go/internal/server"
	"github.com/cardforge/cardforge-go/internal/service"
)

var (
	serveAddr string
	serveWipe bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server: the generation reverse proxy, the job-run
endpoint and the auxiliary share, check-in and password-reset endpoints.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides CARDFORGE_LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serveWipe, "wipe", false, "wipe all data from database on startup (testing only)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWipe {
		if err := dbClient.WipeData(ctx); err != nil {
			return fmt.Errorf("wipe database: %w", err)
		}
	}

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	collector := metrics.NewCollector()
	extractor := service.NewExtractor(dbClient, model, collector)
	social := service.NewSocial(dbClient)
	proxy := server.NewProxy(cfg.ProxyOrigin, cfg.GeminiAPIKey, cfg.DefaultClientVersion, "/proxy", collector, logger)

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(addr, extractor, social, proxy, collector, logger)

	logger.Info("starting cardforge server", "addr", addr, "model", model.Model())
	return srv.Run(ctx)
}
