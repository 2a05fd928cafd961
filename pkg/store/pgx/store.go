package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/confmine/confmine/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// PipelineStore implements store.Store on PostgreSQL.
type PipelineStore struct {
	conn pgxIConn
	mode store.LabelMode
}

// NewPipelineStoreWithConnection creates a PipelineStore on an existing
// connection or pool. The label mode decides which label column GetLines
// treats as authoritative and is fixed for the lifetime of the store.
func NewPipelineStoreWithConnection(conn pgxIConn, mode store.LabelMode) *PipelineStore {
	if mode == "" {
		mode = store.ModeGold
	}
	return &PipelineStore{
		conn: conn,
		mode: mode,
	}
}
