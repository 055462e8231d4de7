package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/shokoz/pkg/host"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/kasuboski/shokoz/pkg/storage/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list items",
}

var listSeasonsCmd = &cobra.Command{
	Use:   "seasons <seriesID>",
	Short: "list the seasons of the show containing a series",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		filter, err := manager.ParseFilterMode(seasonFilter)
		if err != nil {
			log.Fatalw("invalid filter", zap.Error(err))
		}

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalw("failed to load configuration", zap.Error(err))
		}
		a, err := newApp(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer a.Close()

		seasons, err := a.seasons.ListSeasons(ctx, args[0], filter, seasonLanguage)
		if err != nil {
			log.Fatalw("failed to list seasons", zap.Error(err))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEASON\tSERIES\tOFFSET\tNAME")
		for _, s := range seasons {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.IndexNumber, s.ProviderIDs[host.ProviderShokoSeries], s.ProviderIDs[host.ProviderShokoSeasonOffset], s.Name)
		}
		w.Flush()
	},
}

var listJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "list scheduled and finished jobs",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg, err := loadConfig()
		if err != nil {
			log.Fatalw("failed to load configuration", zap.Error(err))
		}

		store, err := sqlite.New(ctx, cfg.Storage.FilePath)
		if err != nil {
			log.Fatalw("failed to create storage connection", zap.Error(err))
		}
		defer store.Close()
		if err := store.RunMigrations(ctx); err != nil {
			log.Fatalw("failed to migrate database", zap.Error(err))
		}

		jobs, err := store.ListJobs(ctx)
		if err != nil {
			log.Fatalw("failed to list jobs", zap.Error(err))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tSTATE\tPROGRESS\tCREATED\tUPDATED\tERROR")
		for _, j := range jobs {
			errMsg := ""
			if j.Error != nil {
				errMsg = *j.Error
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s%%\t%s\t%s\t%s\n",
				j.ID, j.Type, j.State,
				humanize.FtoaWithDigits(j.Progress*100, 1),
				humanize.Time(j.CreatedAt), humanize.Time(j.UpdatedAt),
				errMsg)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listSeasonsCmd, listJobsCmd)
	listSeasonsCmd.Flags().StringVar(&seasonFilter, "filter", "", "series filter: movies or others")
	listSeasonsCmd.Flags().StringVar(&seasonLanguage, "language", "", "preferred title language, defaults to metadata.language")
}
