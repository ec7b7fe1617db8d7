package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"trade-match/internal/config"
	"trade-match/internal/delivery/http/handler"
	"trade-match/internal/delivery/http/middleware"
	"trade-match/internal/repository"
	"trade-match/internal/usecase"
	"trade-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

// Bootstrap wires the API server: repositories, usecases, handlers, the
// websocket hub, and the Redis event bridge that relays match-ready
// events from the matcher worker to websocket subscribers.
func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	container, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	jobRepo := repository.NewPostgresJobRepository(container.DB)
	matchRepo := repository.NewPostgresMatchRepository(container.DB)

	matchUC := usecase.NewMatchUsecase(jobRepo, matchRepo)

	hub := ws.NewHub(logger)
	wsHandler := ws.NewHandler(hub, logger)

	f := fiber.New(fiber.Config{})

	f.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	f.Use(middleware.NewErrorMiddleware().Middleware())

	handler.NewHealthHandler().RegisterRoutes(f)

	api := f.Group("/api")
	v1 := api.Group("/v1")
	handler.NewMatchHandler(container.Queue, matchUC).RegisterRoutes(v1)

	f.Get("/ws/matches", wsHandler.HandleMatchesWS)

	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	go relayMatchEvents(bridgeCtx, container, hub)

	cleanup := func() error {
		cancelBridge()
		return container.Close()
	}
	return &App{Fiber: f, Hub: hub}, cleanup, nil
}

func relayMatchEvents(ctx context.Context, container *Container, hub *ws.Hub) {
	notifier := ws.NewMatchNotifier(hub)
	for evt := range container.Queue.SubscribeMatchesReady(ctx) {
		notifier.NotifyMatchesReady(evt.JobID, evt.Count)
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
