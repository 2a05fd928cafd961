package routes

import (
	"net/http"
	"strconv"

	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

func GetConferencesHandler(c echo.Context) error {
	type conferencesResponse struct {
		Conferences []common.Conference `json:"conferences"`
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)

	conferences, err := db.ListConferences(ctx)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, conferencesResponse{Conferences: conferences})
}

func GetConferenceHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conference id"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)

	conf, err := db.GetConference(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Conference not found"})
	}

	return c.JSON(http.StatusOK, conf)
}
