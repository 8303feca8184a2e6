package claim

import (
	"errors"
	"time"

	"backend-landgrab/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

type fixRequest struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recorded_at"`
	AccuracyM  float64   `json:"accuracy_m"`
}

func RegisterRoutes(r fiber.Router, mgr *Manager, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		snap, err := mgr.Start(userID)
		if err != nil {
			if errors.Is(err, ErrSessionActive) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Post("/sessions/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "lat/lng out of range")
		}

		userID, _ := c.Locals("user_id").(string)
		snap, err := mgr.Ingest(c.Context(), userID, Fix{
			Coordinate: geo.Coordinate{Lat: req.Lat, Lng: req.Lng},
			RecordedAt: req.RecordedAt,
			AccuracyM:  req.AccuracyM,
		})
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(snap)
	})

	r.Get("/sessions/snapshot", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		snap, err := mgr.Snapshot(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/sessions/stop", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		result, saved, err := mgr.Stop(c.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		resp := fiber.Map{"result": result}
		if saved != nil {
			resp["territory"] = saved
		}
		return c.JSON(resp)
	})

	r.Post("/sessions/reset", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		snap, err := mgr.Reset(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(snap)
	})

	r.Delete("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		if err := mgr.Abandon(userID); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
