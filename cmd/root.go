package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shokoz",
	Short: "shokoz cli",
	Long:  `shokoz presents Shoko series as shows and seasons and keeps watch state in sync`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, settings can also come from SHOKOZ_ environment variables")
}

const (
	defaultSyncInterval     = time.Hour * 6
	defaultScheduleInterval = time.Minute
)

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	viper.SetEnvPrefix("SHOKOZ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("shoko.scheme", "http")
	viper.SetDefault("shoko.host", "localhost:8111")
	viper.SetDefault("shoko.apiKey", "")
	viper.SetDefault("shoko.backoff", time.Millisecond*500)
	viper.SetDefault("shoko.maxRetries", 3)
	viper.SetDefault("shoko.timeout", time.Second*30)

	viper.SetDefault("metadata.language", "en")
	viper.SetDefault("metadata.seriesGrouping", "shoko")
	viper.SetDefault("metadata.addAniDBId", true)
	viper.SetDefault("metadata.hideSpoilerTags", true)
	viper.SetDefault("metadata.excludedTags", []string{})

	viper.SetDefault("sync.users", []map[string]any{})
	viper.SetDefault("sync.workers", 4)
	viper.SetDefault("sync.queueSize", 256)
	viper.SetDefault("sync.conflictPolicy", "newest")

	viper.SetDefault("storage.filePath", "shokoz.sqlite")

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("manager.jobs.userDataSync", defaultSyncInterval)
	viper.SetDefault("manager.jobs.jobScheduleInterval", defaultScheduleInterval)
}
