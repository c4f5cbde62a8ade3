package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/store"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List saved candidate records",
	Run: func(_ *cobra.Command, _ []string) {
		records()
	},
}

func init() {
	rootCmd.AddCommand(recordsCmd)
}

func records() {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	recordStore := store.New(config.Store.Dir, logger)

	names, err := recordStore.List()
	if err != nil {
		logger.Fatal("listing candidate records", zap.Error(err))
	}

	if len(names) == 0 {
		logger.Info("no candidate records found")
		return
	}

	for _, name := range names {
		fmt.Println(name)
	}
}
