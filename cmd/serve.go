package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/kasuboski/shokoz/pkg/storage"
	"github.com/kasuboski/shokoz/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the shokoz server",
	Long:  `start the HTTP server, the user data sync engine and the job scheduler`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalw("failed to load configuration", zap.Error(err))
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		a, err := newApp(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer a.Close()

		bus := host.NewLocalBus()
		invalidator := manager.NewCacheInvalidator(a.resolver, a.store)
		scheduler := manager.NewScheduler(a.store, cfg.Manager, map[storage.JobType]manager.JobExecutor{
			storage.UserDataSync: a.scanExecutor(),
		})

		srv := server.New(log, server.Deps{
			Seasons:   a.seasons,
			Shows:     a.resolver,
			Scheduler: scheduler,
			Jobs:      a.store,
			Store:     a.store,
			Bus:       bus,
			Gatherer:  a.registry,
		})

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return a.engine.Run(gctx, bus) })
		g.Go(func() error { return invalidator.Run(gctx, bus) })
		g.Go(func() error { return scheduler.Run(gctx) })
		g.Go(func() error { return srv.Serve(gctx, cfg.Server.Port) })

		if err := g.Wait(); err != nil {
			log.Errorw("shokoz stopped", zap.Error(err))
			return
		}
		log.Info("shokoz stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
