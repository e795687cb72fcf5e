package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guildhall/config"
	"guildhall/handlers"
	"guildhall/services"
	"guildhall/telemetry"
	"guildhall/utils"
	"guildhall/workers"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with its background workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rootOpts, envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	return cmd
}

// newFixtureClient picks the fixture source named by the config.
func newFixtureClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*services.FixtureClient, error) {
	var source services.FixtureSource
	switch cfg.FixtureSource {
	case "r2":
		client, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			return nil, err
		}
		source = services.NewR2Source(client, cfg.R2.Bucket, cfg.R2.Prefix)
	case "dir":
		source = services.NewDirSource(cfg.FixtureDir)
	default:
		source = services.NewHTTPSource(cfg.FixtureBaseURL, utils.NewHTTPClient(cfg.FixtureTimeout))
	}
	cache := utils.NewTTLCache[[]byte](cfg.AssetCacheTTL)
	return services.NewFixtureClient(source, cache, logger), nil
}

func runServe(ctx context.Context, opts *RootOptions, envFile string) error {
	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.ServiceToken == "" {
		logger.Warn("⚠️ DASHBOARD_SERVICE_TOKEN not set, secured routes will answer 503")
	}

	shutdownTracing, err := telemetry.Setup(ctx, "guildhall", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		logger.Warn("⚠️ tracing disabled", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	manifest, err := services.LoadManifest(cfg.FixtureManifest)
	if err != nil {
		return err
	}
	fixtures, err := newFixtureClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	db, err := services.OpenDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	journal := services.NewActivityService(db, logger)

	quests := services.NewQuestStore(fixtures, manifest, logger).WithJournal(journal)
	guilds := services.NewGuildService(fixtures, manifest, logger)
	wallets := services.NewWalletService(fixtures, logger)
	members := services.NewMemberService(fixtures, guilds, wallets, logger)
	prices := services.NewPriceService(fixtures, logger)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Service-Token, X-Member-ID, X-Member-Name, X-Member-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// The HTTP fixture source may point back at this server.
	app.Static("/SLP", cfg.FixtureDir)

	handlers.Setup(app, handlers.Deps{
		Quests:       quests,
		Journal:      journal,
		Guilds:       guilds,
		Members:      members,
		Wallets:      wallets,
		Prices:       prices,
		ServiceToken: cfg.ServiceToken,
		AssetBaseURL: cfg.FixtureBaseURL,
		Logger:       logger,
	})

	sched, err := fixtures.StartCacheScheduler(time.Minute)
	if err != nil {
		return err
	}
	defer func() { _ = sched.Shutdown() }()

	ctx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	guildSync := workers.NewGuildSyncWorker(guilds, cfg.GuildRefreshInterval, logger)
	started := startOnListen(app, func() {
		logger.Info("✅ Server running", zap.String("addr", cfg.Addr()), zap.Strings("origins", cfg.AllowedOrigins))
		go workers.PollPrices(ctx, prices, cfg.PricePollInterval, logger)
		guildSync.Start(ctx)
		go func() {
			n, err := quests.LoadQuests(ctx)
			if err != nil {
				logger.Error("❌ [QUESTS] initial load failed", zap.Error(err))
				return
			}
			logger.Info("✅ [QUESTS] quests loaded", zap.Int("count", n))
		}()
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			stopWorkers()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("⚠️ server shutdown", zap.Error(err))
	}
	stopWorkers()
	select {
	case <-started:
		<-guildSync.Done()
	default:
	}
	return nil
}

// startOnListen runs start once the listener is bound. The HTTP fixture source
// may point back at this server, so the first fixture loads must not race the socket.
// start must not block; the returned channel is closed after it returns.
func startOnListen(app *fiber.App, start func()) <-chan struct{} {
	started := make(chan struct{})
	var once sync.Once
	app.Hooks().OnListen(func(fiber.ListenData) error {
		once.Do(func() {
			start()
			close(started)
		})
		return nil
	})
	return started
}
