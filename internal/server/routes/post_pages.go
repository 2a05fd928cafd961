package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/confmine/confmine/internal/queue"
	"github.com/confmine/confmine/internal/server/middleware"
	"github.com/confmine/confmine/internal/storage"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UploadPageHandler stores a crawled page snapshot and queues it for line
// ingestion.
func UploadPageHandler(c echo.Context) error {
	type uploadPageBody struct {
		URL string `form:"url" validate:"required,url"`
	}

	type uploadPageResponse struct {
		Message string `json:"message"`
		PageID  int64  `json:"page_id,omitempty"`
		FileKey string `json:"file_key,omitempty"`
	}

	confID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadPageResponse{
			Message: "Invalid conference id",
		})
	}

	data := new(uploadPageBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadPageResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, uploadPageResponse{
			Message: "Invalid request body",
		})
	}

	upload, err := c.FormFile("snapshot")
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadPageResponse{
			Message: "Missing snapshot file",
		})
	}

	src, err := upload.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, uploadPageResponse{
			Message: "Invalid snapshot file",
		})
	}
	defer src.Close()

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	key, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadPageResponse{
			Message: "Internal server error",
		})
	}

	fileKey, err := storage.PutFile(ctx, app.S3, fmt.Sprintf("conferences/%d", confID), upload.Filename, key, src)
	if err != nil {
		logger.Error("Failed to upload snapshot", "conference_id", confID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadPageResponse{
			Message: "Internal server error",
		})
	}

	db := pgstore.NewPipelineStoreWithConnection(app.DBConn, store.ModeGold)
	pageID, err := db.AddPage(ctx, confID, data.URL, fileKey)
	if err != nil {
		logger.Error("Failed to add page", "conference_id", confID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadPageResponse{
			Message: "Internal server error",
		})
	}

	msg, err := json.Marshal(queue.IngestPageMsg{
		Message:      "Ingest page snapshot",
		ConferenceID: confID,
		PageID:       pageID,
		FileKey:      fileKey,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, uploadPageResponse{
			Message: "Internal server error",
		})
	}
	if err := queue.PublishFIFO(app.Queue, "ingest_queue", msg); err != nil {
		logger.Error("Failed to publish ingest message", "page_id", pageID, "err", err)
		return c.JSON(http.StatusInternalServerError, uploadPageResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusCreated, uploadPageResponse{
		Message: "Page queued for ingestion",
		PageID:  pageID,
		FileKey: fileKey,
	})
}
