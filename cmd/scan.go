package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// scanCmd reconciles the whole library once without the scheduler
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "reconcile watch state for every synced video",
	Long:  `reconcile host and Shoko watch state for every video with Shoko ids, for every enabled user`,
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

		err = a.engine.ScanLibrary(ctx, func(done float64) {
			log.Infow("scan progress", zap.String("done", humanize.FtoaWithDigits(done*100, 1)+"%"))
		})
		if err != nil {
			log.Errorw("scan finished with errors", zap.Error(err))
			return
		}
		log.Info("scan finished")
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
