package tracking

import (
	"errors"

	"github.com/SkWeli/step-tracker/internal/sensors"
	"github.com/SkWeli/step-tracker/internal/session"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/session/start", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := svc.Start(c.UserContext())
		if err != nil {
			return controlError(err, fiber.StatusConflict)
		}
		return c.JSON(snap)
	})

	r.Post("/session/stop", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := svc.Stop(c.UserContext())
		if err != nil {
			return controlError(err, fiber.StatusInternalServerError)
		}
		return c.JSON(snap)
	})

	r.Post("/session/reset", authMiddleware, func(c *fiber.Ctx) error {
		snap, err := svc.Reset(c.UserContext())
		if err != nil {
			return controlError(err, fiber.StatusInternalServerError)
		}
		return c.JSON(snap)
	})

	r.Get("/session/state", func(c *fiber.Ctx) error {
		snap, err := svc.Snapshot(c.UserContext())
		if err != nil {
			return controlError(err, fiber.StatusInternalServerError)
		}
		return c.JSON(snap)
	})

	r.Get("/session/stats", func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.UserContext())
		if err != nil {
			return controlError(err, fiber.StatusInternalServerError)
		}
		return c.JSON(stats)
	})

	r.Post("/sensors/steps", authMiddleware, func(c *fiber.Ctx) error {
		var req sensors.StepEvent
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, err := svc.IngestSteps(req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(res)
	})

	r.Post("/sensors/position", authMiddleware, func(c *fiber.Ctx) error {
		var req sensors.PositionEvent
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, err := svc.IngestPosition(req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(res)
	})

	r.Post("/sensors/pressure", authMiddleware, func(c *fiber.Ctx) error {
		var req sensors.PressureEvent
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		res, err := svc.IngestPressure(req)
		if err != nil {
			return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
		}
		return c.Status(fiber.StatusAccepted).JSON(res)
	})

	r.Post("/sensors/:kind/error", authMiddleware, func(c *fiber.Ctx) error {
		var req StreamErrorRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "message required")
		}
		if err := svc.ReportError(c.Params("kind"), req.Message); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})
}

func controlError(err error, status int) error {
	if errors.Is(err, session.ErrNotRunning) {
		status = fiber.StatusServiceUnavailable
	}
	return fiber.NewError(status, err.Error())
}
