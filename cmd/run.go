package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/talentscout/screener/internal/interview"
	"github.com/talentscout/screener/internal/logger"
	"github.com/talentscout/screener/internal/oracle/gemini"
	"github.com/talentscout/screener/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one screening interview in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// run is the main command for the cli: one interview, start to done.
func run() {
	ctx := context.Background()

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting talentscout", zap.String("version", version))

	provider := strings.TrimSpace(strings.ToLower(config.Oracle.Provider))
	if provider != "" && provider != "gemini" {
		logger.Fatal("unsupported oracle provider", zap.String("provider", config.Oracle.Provider))
	}

	apiKey, err := resolveAPIKey(config.Oracle.Gemini)
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE, or the oracle.gemini section in the configuration file"),
		)
	}

	oracleLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.Oracle.Gemini.Model),
	)

	oracleClient, err := gemini.New(ctx, apiKey, config.Oracle.Gemini.Model, config.Oracle.Gemini.MaxLogLength, oracleLogger)
	if err != nil {
		logger.Fatal("creating the gemini client", zap.Error(err))
	}

	recordStore := store.New(config.Store.Dir, logger)
	generator := interview.NewGenerator(oracleClient, config.Interview.QuestionsPerSkill, logger)
	evaluator := interview.NewEvaluator(oracleClient, logger)

	controller := interview.NewController(generator, evaluator, recordStore, consoleSink{}, logger)

	if err := controller.Start(ctx); err != nil {
		logger.Fatal("starting the conversation", zap.Error(err))
	}

	input := promptui.Prompt{Label: "You"}

	for !controller.Done() {
		text, err := input.Run()
		if err != nil {
			logger.Info("exiting", zap.String("reason", "input closed"), zap.Error(err))
			return
		}

		if err := controller.HandleUtterance(ctx, text); err != nil {
			logger.Error("session finished with an error", zap.Error(err))
		}
	}

	fmt.Println()
	fmt.Println(interview.CompletionNotice)
}

// consoleSink prints assistant turns to stdout. User turns are already
// visible on the terminal as the candidate types them.
type consoleSink struct{}

func (consoleSink) Render(role interview.Role, text string) {
	if role == interview.RoleAssistant {
		fmt.Printf("\nTalentScout: %s\n\n", text)
	}
}
