package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traffgo/traffgo/pkg/manager"
)

func TrafficRouter(router fiber.Router, trafficManager *manager.Manager) {
	router.Get("/state", func(c *fiber.Ctx) error {
		return getTrafficState(c, trafficManager)
	})
	router.Get("/colorings", func(c *fiber.Ctx) error {
		return getTrafficColorings(c, trafficManager)
	})
}

func getTrafficState(c *fiber.Ctx, trafficManager *manager.Manager) error {
	var tiles []fiber.Map
	for _, info := range trafficManager.Infos() {
		tiles = append(tiles, fiber.Map{
			"mwm":          info.MwmID.String(),
			"availability": info.Availability.String(),
			"segments":     len(info.Coloring),
		})
	}

	return c.JSON(fiber.Map{
		"state":   trafficManager.State().String(),
		"enabled": trafficManager.IsEnabled(),
		"tiles":   tiles,
	})
}

func getTrafficColorings(c *fiber.Ctx, trafficManager *manager.Manager) error {
	colorings := fiber.Map{}
	for mwmID, coloring := range trafficManager.Colorings() {
		counts := map[string]int{}
		for _, group := range coloring {
			counts[group.String()]++
		}
		colorings[mwmID.String()] = fiber.Map{
			"segments": len(coloring),
			"groups":   counts,
		}
	}

	return c.JSON(colorings)
}
