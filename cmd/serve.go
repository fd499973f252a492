package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/server"
	"github.com/spigell/hh-interviewer/internal/store"
	"github.com/spigell/hh-interviewer/internal/transcribe"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8000)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-interviewer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	generator, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the question generator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	transcriber := newTranscriber(config.Transcription, logger)

	engine := interview.NewEngine(generator, logger)
	sessions := store.New()

	var origins []string
	if config.Server != nil {
		origins = config.Server.AllowedOrigins
	}

	api := server.New(engine, sessions, transcriber, origins, logger)

	httpServer := &http.Server{
		Addr:              viper.GetString("server.address"),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", httpServer.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Fatal("http server failed", zap.Error(err))
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, config *AIConfig, logger *zap.Logger) (ai.Generator, error) {
	if config == nil || config.Gemini == nil {
		config = &AIConfig{Gemini: &GeminiConfig{}}
	}

	provider := strings.TrimSpace(strings.ToLower(config.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", config.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Gemini.Model, config.Gemini.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	if config.Gemini.MaxLogLength > 0 {
		generator.SetMaxLogLength(config.Gemini.MaxLogLength)
	}

	return generator, nil
}

// newTranscriber is best effort: the interview works fine with typed answers,
// so a missing transcription key only disables the audio endpoint.
func newTranscriber(config *TranscriptionConfig, logger *zap.Logger) server.Transcriber {
	if config == nil || !config.Enabled {
		return nil
	}

	token, err := secrets.Load(secrets.Source{
		Name: "transcription api key",
		File: config.APIKeyFile,
		Env:  "DEEPINFRA_API_KEY",
	})
	if err != nil {
		logger.Warn("transcription disabled", zap.Error(err))
		return nil
	}

	client, err := transcribe.New(token, logger)
	if err != nil {
		logger.Warn("transcription disabled", zap.Error(err))
		return nil
	}

	return client
}
