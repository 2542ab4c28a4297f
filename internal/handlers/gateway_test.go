package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"fakeout/internal/broadcast"
	"fakeout/internal/clock"
	"fakeout/internal/game"
	"fakeout/internal/room"
	"fakeout/internal/store"
)

func newTestApp(t *testing.T) (*fiber.App, *room.Registry) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := broadcast.NewHub(log)
	registry := room.NewRegistry(game.DefaultCards(), clock.System(), hub, store.NewSessionStore(), 2*time.Minute, log)
	t.Cleanup(registry.Close)

	app := fiber.New()
	New(registry, hub, "http://localhost:3000", log).Register(app)
	return app, registry
}

func TestCreateRoom(t *testing.T) {
	app, registry := newTestApp(t)

	t.Run("empty body uses defaults", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("POST", "/rooms", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body["room_code"], game.RoomCodeLength)
		_, ok := registry.Get(body["room_code"])
		require.True(t, ok)
	})

	t.Run("max_players out of range", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/rooms", strings.NewReader(`{"max_players":1}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestRoomQR(t *testing.T) {
	app, registry := newTestApp(t)
	code := registry.CreateRoom(0)

	resp, err := app.Test(httptest.NewRequest("GET", "/rooms/"+code+"/qr", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	png, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, len(png) > 8 && string(png[1:4]) == "PNG")

	resp, err = app.Test(httptest.NewRequest("GET", "/rooms/NOSUCH/qr", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebsocketRouteRequiresUpgrade(t *testing.T) {
	app, registry := newTestApp(t)
	code := registry.CreateRoom(0)

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/"+code, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}
