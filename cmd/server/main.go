package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iliyamo/order-desk/internal/config"
	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/router"
	"github.com/iliyamo/order-desk/internal/service"
)

// rootCmd runs the HTTP API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Order desk HTTP API",
	Long:          `server runs the order desk API and provides maintenance commands for the store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, consumeCmd)
}

// openDB loads configuration and opens the configured store. Migrations run
// as part of opening.
func openDB() (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return cfg, nil, fmt.Errorf("open %s store: %w", cfg.DBDriver, err)
	}
	return cfg, db, nil
}

func serve(ctx context.Context) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var events service.OrderEventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL)
	}

	e := router.New(router.Deps{
		DB:        db,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Events:    events,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s, events=%t)", addr, cfg.Env, cfg.DBDriver, cfg.EventsEnabled)

	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("Error: %v", err)
		stop()
		os.Exit(1)
	}
}
