package routes

import (
	"net/http"
	"strconv"

	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetConferencePersonsHandler lists the persons extracted for a conference
// together with their roles and affiliations.
func GetConferencePersonsHandler(c echo.Context) error {
	type personsResponse struct {
		Persons []store.PersonFacts `json:"persons"`
	}

	confID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid conference id"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)

	persons, err := db.ListConferencePersons(ctx, confID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if persons == nil {
		persons = []store.PersonFacts{}
	}

	return c.JSON(http.StatusOK, personsResponse{Persons: persons})
}
