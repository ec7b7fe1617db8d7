package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trade-match/internal/app"
	"trade-match/internal/config"
	"trade-match/internal/llm"
	"trade-match/internal/matcher"
	"trade-match/internal/repository"
	"trade-match/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	container, err := app.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	model, err := llm.NewModel(cfg.LLM)
	if err != nil {
		log.Fatalf("failed to create LLM model: %v", err)
	}

	classifier := llm.NewClassifier(model, cfg.LLM.CallTimeout, logger)
	quoter := llm.NewQuoter(model, cfg.LLM.CallTimeout, logger)

	matchingUC := usecase.NewMatchingUsecase(
		repository.NewPostgresJobRepository(container.DB),
		repository.NewPostgresWorkerRepository(container.DB),
		repository.NewPostgresWorkerProfileRepository(container.DB),
		repository.NewPostgresMatchRepository(container.DB),
		classifier,
		quoter,
		logger,
	)

	runner := matcher.NewRunner(
		container.Queue,
		matchingUC,
		container.Queue,
		logger,
		cfg.Matching.MaxRetries,
		cfg.Matching.LockTTL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("[Matcher] worker started | queue=%s", cfg.Matching.QueueName)
	runner.Run(ctx)
	logger.Printf("[Matcher] worker stopped")
}
