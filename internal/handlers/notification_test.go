package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndagijimanapazo/ikaze-backend/internal/middleware"
	"github.com/ndagijimanapazo/ikaze-backend/internal/models"
	"github.com/ndagijimanapazo/ikaze-backend/internal/storage"
)

// setupNotificationApp skips the JWT middleware and injects the caller
// identity directly, the way Protected would after a valid token.
func setupNotificationApp(store storage.Store, userID string) *fiber.App {
	app := fiber.New()
	h := NewNotificationHandler(store)
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalUserID, userID)
		return c.Next()
	})
	app.Get("/notifications", h.List)
	app.Put("/notifications/read-all", h.MarkAllRead)
	app.Put("/notifications/:id/read", h.MarkRead)
	return app
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	store := storage.NewMemoryStore()
	n, err := store.CreateNotification(&models.Notification{UserID: "u1", Message: "payment confirmed"})
	require.NoError(t, err)

	// Another authenticated user gets a 404, not someone else's state
	other := setupNotificationApp(store, "u2")
	resp, err := other.Test(httptest.NewRequest("PUT", "/notifications/"+n.ID+"/read", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	list, err := store.GetNotificationsByUser("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	// The owner succeeds
	owner := setupNotificationApp(store, "u1")
	resp, err = owner.Test(httptest.NewRequest("PUT", "/notifications/"+n.ID+"/read", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	list, err = store.GetNotificationsByUser("u1")
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}

func TestListReturnsOnlyCallerNotifications(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := store.CreateNotification(&models.Notification{UserID: "u1", Message: "one"})
	require.NoError(t, err)
	_, err = store.CreateNotification(&models.Notification{UserID: "u2", Message: "other"})
	require.NoError(t, err)

	app := setupNotificationApp(store, "u1")
	resp, err := app.Test(httptest.NewRequest("GET", "/notifications", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	list, err := store.GetNotificationsByUser("u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
