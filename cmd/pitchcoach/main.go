package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/ai"
	"github.com/xxxsen/pitchcoach/internal/config"
	"github.com/xxxsen/pitchcoach/internal/diarize"
	"github.com/xxxsen/pitchcoach/internal/embedcache"
	"github.com/xxxsen/pitchcoach/internal/filestore"
	"github.com/xxxsen/pitchcoach/internal/handler"
	"github.com/xxxsen/pitchcoach/internal/job"
	"github.com/xxxsen/pitchcoach/internal/middleware"
	"github.com/xxxsen/pitchcoach/internal/schedule"
	"github.com/xxxsen/pitchcoach/internal/service"
	"github.com/xxxsen/pitchcoach/internal/store"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "pitchcoach",
		Short: "pitchcoach sales call review backend",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run pitchcoach server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Provider credentials may live in a .env next to the binary.
			_ = godotenv.Load()
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildAIStack(cfg *config.Config) (ai.IGenerator, ai.IEmbedder, ai.ITranscriber, error) {
	var generators []ai.GeneratorEntry
	var embedders []ai.EmbedderEntry
	var transcribers []ai.TranscriberEntry
	for _, pc := range cfg.AI.Providers {
		provider, err := ai.NewProvider(pc.Provider, pc.Data)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init ai provider %s: %w", pc.Provider, err)
		}
		generators = append(generators, ai.GeneratorEntry{
			Name:      provider.Name() + "/" + pc.ChatModel,
			Generator: ai.NewGenerator(provider, pc.ChatModel),
		})
		embedders = append(embedders, ai.EmbedderEntry{
			Name:     provider.Name() + "/" + pc.EmbedModel,
			Embedder: ai.NewEmbedder(provider, pc.EmbedModel),
		})
		transcribers = append(transcribers, ai.TranscriberEntry{
			Name:        provider.Name() + "/" + pc.TranscribeModel,
			Transcriber: ai.NewTranscriber(provider, pc.TranscribeModel),
		})
	}
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewGroupEmbedder(embedders),
		cfg.Cache.Size,
		time.Duration(cfg.Cache.TTLMinutes)*time.Minute,
	)
	return ai.NewGroupGenerator(generators), embedder, ai.NewGroupTranscriber(transcribers), nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("data_dir", cfg.DataDir),
		zap.String("file_store", cfg.FileStore.Type),
	)

	convStore, err := store.NewConversationStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("init conversation store: %w", err)
	}
	blobs, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	generator, embedder, transcriber, err := buildAIStack(cfg)
	if err != nil {
		return err
	}

	aiTimeout := time.Duration(cfg.AI.Timeout) * time.Second
	conversationService := service.NewConversationService(
		convStore, blobs, transcriber, embedder,
		diarize.Mode(cfg.AI.Diarization), cfg.Coverage.MaxStepWords, aiTimeout,
	)
	coverageService := service.NewCoverageService(convStore, embedder, cfg.Coverage.SaidThreshold)
	searchService := service.NewSearchService(convStore, embedder, cfg.Coverage.SearchThreshold)
	assistantService := service.NewAssistantService(convStore, generator, cfg.AI.MaxInputChars, aiTimeout)

	deps := handler.RouterDeps{
		Conversations:   handler.NewConversationHandler(conversationService),
		Insights:        handler.NewInsightHandler(coverageService, searchService, assistantService),
		UploadRateLimit: time.Duration(cfg.Upload.RateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORS),
			middleware.RequestID(),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	scheduler := schedule.NewCronScheduler()
	sweep := job.NewStagingSweepJob(convStore, time.Duration(cfg.Upload.StagingMaxAgeHours)*time.Hour)
	if err := scheduler.AddJob(sweep, cfg.Upload.StagingSweepSpec); err != nil {
		return fmt.Errorf("schedule staging sweep: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
