package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/traffgo/traffgo/pkg/api/routes"
	"github.com/traffgo/traffgo/pkg/manager"
)

func SetupServer(listen string, trafficManager *manager.Manager) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.TrafficRouter(group, trafficManager)

	routes.FeedRouter(webApp.Group("/traff"))

	return webApp.Listen(listen)
}
