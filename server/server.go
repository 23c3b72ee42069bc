package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/poiesic/passage/service"
)

// Server exposes the query service over HTTP. Handlers only parse and
// serialize; every retrieval decision stays in the service and engine.
type Server struct {
	app     *fiber.App
	service *service.QueryService
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l == nil {
			l = slog.Default()
		}
		s.logger = l
	}
}

// New creates an HTTP server wired to the given query service.
func New(svc *service.QueryService, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, ErrServiceRequired
	}

	s := &Server{
		service: svc,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName:               "passage",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	app.Post("/query", s.handleQuery)
	app.Get("/healthz", s.handleHealthz)

	s.app = app
	return s, nil
}

// Listen serves HTTP on the given address until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server, letting in-flight requests finish.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req service.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := s.service.Do(c.Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"loaded": s.service.Ready(),
		"units":  s.service.Count(),
	})
}

// errorHandler translates retrieval error kinds to HTTP statuses. Fiber's
// own router errors already carry a status code and pass through as-is.
func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return c.Status(service.StatusOf(err)).JSON(fiber.Map{"error": err.Error()})
}
