package server

import (
	"time"

	"backend-landgrab/internal/auth"
	"backend-landgrab/internal/claim"
	"backend-landgrab/internal/config"
	"backend-landgrab/internal/stream"
	"backend-landgrab/internal/territory"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Claims *claim.Manager
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)

	territories := territory.NewService(db)
	var store claim.TerritoryStore
	if db != nil {
		store = territories
	}

	claims := claim.NewManager(
		claim.ThresholdsFromConfig(cfg),
		store,
		hub,
		time.Duration(cfg.ClaimTickSeconds)*time.Second,
	)
	if store != nil && cfg.RosterRefreshSeconds > 0 {
		claims.StartRosterRefresh(time.Duration(cfg.RosterRefreshSeconds) * time.Second)
	}

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: hub,
		Claims: claims,
	}

	registerRoutes(s, territories)
	return s
}

func registerRoutes(s *Server, territories *territory.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB, s.Redis))
	claim.RegisterRoutes(s.App.Group("/claims"), s.Claims, jwtMiddleware)
	territory.RegisterRoutes(s.App.Group("/territories"), territories, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
