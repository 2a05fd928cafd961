package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/confmine/confmine/internal/queue"
	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// TriggerExtractionHandler queues entity extraction for a conference.
func TriggerExtractionHandler(c echo.Context) error {
	confID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conference id"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	db := pgstore.NewPipelineStoreWithConnection(app.DBConn, store.ModeGold)
	if _, err := db.GetConference(ctx, confID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conference not found"})
	}

	msg, err := json.Marshal(queue.ExtractConferenceMsg{
		Message:      "Extract conference entities",
		ConferenceID: confID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if err := queue.PublishFIFO(app.Queue, "extract_queue", msg); err != nil {
		logger.Error("Failed to publish extract message", "conference_id", confID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"message": "Extraction queued"})
}
