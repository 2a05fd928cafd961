package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confmine/confmine/internal/util"
	"github.com/confmine/confmine/pkg/extract"
	"github.com/confmine/confmine/pkg/graphstore"
	"github.com/confmine/confmine/pkg/leaselock"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/ner"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessExtractMessage runs entity extraction for one conference under a
// lease lock, so concurrent workers never interleave pairing state for the
// same conference.
func ProcessExtractMessage(
	ctx context.Context,
	conn *pgxpool.Pool,
	graphDriver graphstore.Driver,
	extractor ner.Extractor,
	msg string,
) error {
	var data ExtractConferenceMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	mode := store.LabelMode(util.GetEnvString("EXTRACT_LABEL_MODE", string(store.ModeGold)))
	db := pgstore.NewPipelineStoreWithConnection(conn, mode)

	conf, err := db.GetConference(ctx, data.ConferenceID)
	if err != nil {
		return fmt.Errorf("failed to load conference %d: %w", data.ConferenceID, err)
	}

	engine := extract.NewEngine(extract.NewEngineParams{
		Store:     db,
		Graph:     graphDriver,
		Extractor: extractor,

		IndentDiffThresh: int(util.GetEnvNumeric("EXTRACT_INDENT_DIFF", extract.DefaultIndentDiffThresh)),
		LnumDiffThresh:   int(util.GetEnvNumeric("EXTRACT_LNUM_DIFF", extract.DefaultLnumDiffThresh)),
	})

	locks := leaselock.New(conn)
	lockKey := fmt.Sprintf("extract:%d", data.ConferenceID)

	start := time.Now()
	err = locks.WithLease(ctx, lockKey, leaselock.Options{Wait: true}, func(ctx context.Context) error {
		return engine.ProcessConference(ctx, conf)
	})
	if err != nil {
		return err
	}

	persons, err := db.ListConferencePersons(ctx, data.ConferenceID)
	if err != nil {
		logger.Warn("[Queue] Failed to count extracted persons", "conference_id", data.ConferenceID, "err", err)
	}

	durationMs := time.Since(start).Milliseconds()
	if err := db.AddProcessStat(ctx, data.ConferenceID, "entity_extraction", len(persons), durationMs); err != nil {
		logger.Warn("[Queue] Failed to record process stat", "conference_id", data.ConferenceID, "err", err)
	}

	logger.Info("[Queue] Extraction finished",
		"conference_id", data.ConferenceID,
		"persons", len(persons),
		"duration_ms", durationMs,
	)

	return nil
}
