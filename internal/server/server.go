package server

import (
	"github.com/SkWeli/step-tracker/internal/auth"
	"github.com/SkWeli/step-tracker/internal/config"
	"github.com/SkWeli/step-tracker/internal/sensors"
	"github.com/SkWeli/step-tracker/internal/session"
	"github.com/SkWeli/step-tracker/internal/stream"
	"github.com/SkWeli/step-tracker/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App        *fiber.App
	Cfg        config.Config
	Redis      *redis.Client
	Stream     *stream.Hub
	Feeds      tracking.Feeds
	Controller *session.Controller
	Auth       *auth.Service
}

func NewServer(cfg config.Config, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	feeds := tracking.Feeds{
		Steps:     sensors.NewStepFeed(cfg.StepCounterAvailable),
		Positions: sensors.NewPositionFeed(cfg.PositionMinDistanceM, sensors.ParseAccuracy(cfg.PositionAccuracy)),
		Pressure:  sensors.NewPressureFeed(cfg.BarometerAvailable),
	}
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:    app,
		Cfg:    cfg,
		Redis:  redisClient,
		Stream: hub,
		Feeds:  feeds,
		Auth:   auth.NewService(cfg.JWTSecret),
		Controller: session.New(
			session.Sources{Steps: feeds.Steps, Positions: feeds.Positions, Pressure: feeds.Pressure},
			auth.ClaimsGate{},
			session.WithObserver(hub.Publish),
			session.WithStartTimeout(cfg.StartTimeout),
		),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":            "ok",
			"position_accuracy": s.Feeds.Positions.Accuracy(),
			"min_distance_m":    s.Feeds.Positions.MinDistanceM(),
			"stream_clients":    s.Stream.Clients(),
		})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Auth)

	tracking.RegisterRoutes(s.App, tracking.NewService(s.Controller, s.Feeds), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

// Close releases the feeds and the stream hub.
func (s *Server) Close() {
	s.Feeds.Steps.Close()
	s.Feeds.Positions.Close()
	s.Feeds.Pressure.Close()
	s.Stream.Close()
}
