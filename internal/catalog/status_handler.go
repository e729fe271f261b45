package catalog

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

type StatusResponse struct {
	Banner   string `json:"banner,omitempty"`
	Loaded   bool   `json:"loaded"`
	Products int    `json:"products"`
	Clients  int    `json:"clients"`
	Sales    int    `json:"sales"`
}

func (s *Store) statusResponse() StatusResponse {
	banner, loaded := s.Status()
	return StatusResponse{
		Banner:   banner,
		Loaded:   loaded,
		Products: len(s.Products()),
		Clients:  len(s.Clients()),
		Sales:    len(s.Sales()),
	}
}

// GET /api/status
func StatusHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(store.statusResponse())
	}
}

// POST /api/reload
// A failed load is not an HTTP error: the banner in the body tells the UI.
func ReloadHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.Load(c.UserContext()); err != nil {
			log.Println("reload:", err)
		}
		return c.JSON(store.statusResponse())
	}
}
