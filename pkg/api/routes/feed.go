package routes

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/traffgo/traffgo/pkg/source"
	"github.com/traffgo/traffgo/pkg/traff"
)

func FeedRouter(router fiber.Router) {
	router.Post("/feed", postFeed)
}

// postFeed validates a pushed TraFF feed document and publishes it to the
// feed queue for the queue source consumers.
func postFeed(c *fiber.Ctx) error {
	body := c.Body()

	feed, err := traff.ParseFeed(bytes.NewReader(body))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := source.PublishFeed(string(body)); err != nil {
		log.Error().Err(err).Msg("Failed to publish traff feed")
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"messages": len(feed),
	})
}
