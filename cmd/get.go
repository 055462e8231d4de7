package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/manager"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seasonFilter   string
	seasonLanguage string
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "get one item",
}

// getSeasonCmd prints the metadata shokoz would give a host for one season
var getSeasonCmd = &cobra.Command{
	Use:   "season <seriesID> <season>",
	Short: "project one season of the show containing a series",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		season, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalw("season must be a number", zap.String("season", args[1]))
		}
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

		md := a.seasons.GetSeasonMetadata(ctx, manager.SeasonRequest{
			SeriesID:     args[0],
			SeasonNumber: &season,
			Filter:       filter,
			Language:     seasonLanguage,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(md); err != nil {
			log.Errorw("failed to print season", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.AddCommand(getSeasonCmd)
	getSeasonCmd.Flags().StringVar(&seasonFilter, "filter", "", "series filter: movies or others")
	getSeasonCmd.Flags().StringVar(&seasonLanguage, "language", "", "preferred title language, defaults to metadata.language")
}
