package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GodwinAdu/retail-pos-sub000/internal/middleware"
	"github.com/GodwinAdu/retail-pos-sub000/internal/pos"
)

// parseDateRange reads start_date/end_date query params as YYYY-MM-DD.
// The end date is inclusive; missing params leave that bound open.
func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	var startDate, endDate time.Time

	if s := c.Query("start_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return startDate, endDate, errors.New("Invalid start_date format. Use YYYY-MM-DD")
		}
		startDate = parsed
	}

	if s := c.Query("end_date"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return startDate, endDate, errors.New("Invalid end_date format. Use YYYY-MM-DD")
		}
		endDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	return startDate, endDate, nil
}

// GetSaleStats handles GET /reports/sales?branch_id=...&start_date=...&end_date=...
func GetSaleStats(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		startDate, endDate, err := parseDateRange(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		report, err := engine.Stats(c.Context(), identity, c.Query("branch_id"), startDate, endDate)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(report)
	}
}

// ListSales handles GET /pos/sales?branch_id=...&start_date=...&end_date=...
func ListSales(engine *pos.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := middleware.IdentityFromContext(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		startDate, endDate, err := parseDateRange(c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		sales, err := engine.ListSales(c.Context(), identity, c.Query("branch_id"), startDate, endDate)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(sales)
	}
}
