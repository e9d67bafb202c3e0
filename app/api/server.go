// Package api exposes the assistant over HTTP (fiber) and, optionally, as an
// MCP tool over stdio.
package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"concierge/app/config"
	"concierge/app/service/dialogue"
	"concierge/app/service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/samber/do"
)

const recentActionsLimit = 50

type Server struct {
	cfg         *config.Config
	dialogueSvc *dialogue.Service
	storeSvc    *store.Service
	app         *fiber.App
}

func NewServer(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:         do.MustInvoke[*config.Config](di),
		dialogueSvc: do.MustInvoke[*dialogue.Service](di),
		storeSvc:    do.MustInvoke[*store.Service](di),
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Post("/sessions", s.handleStartSession)
	api.Post("/sessions/:id/reset", s.handleResetSession)
	api.Post("/sessions/:id/messages", s.handleMessage)
	api.Get("/sessions/:id", s.handleSnapshot)
	api.Get("/actions", s.handleActions)

	s.app = app

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.ShutdownWithTimeout(5 * time.Second)
	}()

	slog.Info("HTTP server listening", "addr", s.cfg.Server.Addr)

	if err := s.app.Listen(s.cfg.Server.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func (s *Server) handleStartSession(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"session_id": s.dialogueSvc.StartSession()})
}

func (s *Server) handleResetSession(c *fiber.Ctx) error {
	newID, err := s.dialogueSvc.ResetSession(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"session_id": newID})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message is required"})
	}

	start := time.Now()

	response, snapshot, err := s.dialogueSvc.ProcessTurn(c.Context(), c.Params("id"), req.Message)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	slog.Info("Processed turn",
		"session_id", snapshot.SessionID,
		"intent", snapshot.Intent,
		"mode", snapshot.Mode,
		"duration", time.Since(start))

	return c.JSON(fiber.Map{
		"response": response,
		"state":    snapshot,
	})
}

func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	snapshot, err := s.dialogueSvc.Snapshot(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(snapshot)
}

func (s *Server) handleActions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", recentActionsLimit)

	actions, err := s.storeSvc.RecentActions(limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if actions == nil {
		actions = []store.ActionRecord{}
	}

	return c.JSON(actions)
}
