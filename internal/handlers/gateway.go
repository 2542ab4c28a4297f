// Package handlers is the transport edge: a fiber HTTP surface for room
// creation plus a websocket channel per room. It owns no game state: every
// command is re-validated by the room engine, and the gateway only decodes,
// dispatches and frames replies.
package handlers

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	qrcode "github.com/skip2/go-qrcode"

	"fakeout/internal/broadcast"
	"fakeout/internal/room"
)

// Gateway wires the registry and the broadcast hub to fiber routes.
type Gateway struct {
	registry *room.Registry
	hub      *broadcast.Hub
	validate *validator.Validate
	joinBase string
	log      *slog.Logger
}

// New creates a gateway. joinBase is the frontend base URL encoded into the
// QR join links.
func New(registry *room.Registry, hub *broadcast.Hub, joinBase string, log *slog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		hub:      hub,
		validate: validator.New(),
		joinBase: joinBase,
		log:      log,
	}
}

// Register mounts all routes on the app.
func (g *Gateway) Register(app *fiber.App) {
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	app.Post("/rooms", g.handleCreateRoom)
	app.Get("/rooms/:code/qr", g.handleRoomQR)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/:code", websocket.New(g.handleSocket))
}

type createRoomPayload struct {
	MaxPlayers int `json:"max_players" validate:"omitempty,min=2,max=16"`
}

func (g *Gateway) handleCreateRoom(c *fiber.Ctx) error {
	var body createRoomPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}
	if err := g.validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_players must be between 2 and 16"})
	}

	code := g.registry.CreateRoom(body.MaxPlayers)
	return c.JSON(fiber.Map{"room_code": code})
}

// handleRoomQR renders the room's join link as a QR code so the host can put
// it on a shared screen.
func (g *Gateway) handleRoomQR(c *fiber.Ctx) error {
	code := c.Params("code")
	if _, ok := g.registry.Get(code); !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": room.Kind(room.ErrRoomNotFound)})
	}
	png, err := qrcode.Encode(g.joinBase+"/game/"+code, qrcode.Medium, 256)
	if err != nil {
		g.log.Error("qr encode failed", "room", code, "err", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

