package routes

import (
	"net/http"

	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func CreateConferenceHandler(c echo.Context) error {
	type createConferenceBody struct {
		Title      string `json:"title" validate:"required"`
		URL        string `json:"url" validate:"required,url"`
		Year       int    `json:"year" validate:"required,numeric"`
		WaybackURL string `json:"wayback_url"`
	}

	type createConferenceResponse struct {
		Message      string `json:"message"`
		ConferenceID int64  `json:"conference_id,omitempty"`
	}

	data := new(createConferenceBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createConferenceResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createConferenceResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)

	id, err := db.CreateConference(ctx, common.Conference{
		Title:      data.Title,
		URL:        data.URL,
		Year:       data.Year,
		WaybackURL: data.WaybackURL,
	})
	if err != nil {
		logger.Error("Failed to create conference", "title", data.Title, "err", err)
		return c.JSON(http.StatusInternalServerError, createConferenceResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, createConferenceResponse{
		Message:      "Conference created",
		ConferenceID: id,
	})
}

func MarkAccessibilityHandler(c echo.Context) error {
	type markAccessibilityBody struct {
		URL    string `json:"url" validate:"required,url"`
		Status string `json:"status" validate:"required"`
	}

	data := new(markAccessibilityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)

	if err := db.MarkAccessibility(ctx, data.URL, data.Status); err != nil {
		logger.Error("Failed to mark accessibility", "url", data.URL, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Accessibility updated"})
}
