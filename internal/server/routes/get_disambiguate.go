package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/confmine/confmine/internal/util"
	"github.com/confmine/confmine/pkg/disambig"
	"github.com/confmine/confmine/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DisambiguateHandler fetches identity candidates for a person name from the
// external providers and ranks them by name distance. Results are returned to
// the caller and never persisted.
func DisambiguateHandler(c echo.Context) error {
	type disambiguateResponse struct {
		Name       string            `json:"name"`
		Candidates []disambig.Ranked `json:"candidates"`
	}

	name := c.QueryParam("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing name parameter"})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit parameter"})
		}
		limit = parsed
	}

	fetcher := disambig.NewFetcher(disambig.NewFetcherParams{
		ORCIDBaseURL:   util.GetEnv("ORCID_BASE_URL"),
		AMinerBaseURL:  util.GetEnv("AMINER_BASE_URL"),
		ScholarBaseURL: util.GetEnv("SCHOLAR_BASE_URL"),

		ResultsPerProvider: limit,
		Timeout:            30 * time.Second,
	})

	ctx := c.Request().Context()
	candidates, err := fetcher.FetchAll(ctx, name)
	if err != nil {
		logger.Error("Failed to fetch identity candidates", "name", name, "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Provider lookup failed"})
	}

	ranked := disambig.RankCandidates(name, candidates)
	if ranked == nil {
		ranked = []disambig.Ranked{}
	}

	return c.JSON(http.StatusOK, disambiguateResponse{
		Name:       name,
		Candidates: ranked,
	})
}
