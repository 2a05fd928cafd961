package neo4j

import (
	"context"
	"sync/atomic"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/confmine/confmine/pkg/graphstore"
)

// Driver implements graphstore.Driver on a Neo4j server.
type Driver struct {
	driver neo4j.DriverWithContext
}

// NewDriverParams configures a Neo4j connection.
type NewDriverParams struct {
	URI      string
	Username string
	Password string
}

// NewDriver connects to Neo4j and verifies the server is reachable.
func NewDriver(ctx context.Context, params NewDriverParams) (*Driver, error) {
	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		return nil, err
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	return &Driver{driver: driver}, nil
}

func (d *Driver) NewSession(ctx context.Context) (graphstore.Session, error) {
	s := d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeWrite,
	})
	return &session{inner: s}, nil
}

func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

type session struct {
	inner  neo4j.SessionWithContext
	closed atomic.Bool
}

func (s *session) ExecuteWrite(ctx context.Context, fn graphstore.TxFunc) (any, error) {
	return s.inner.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(ctx, &transaction{tx: tx})
	})
}

func (s *session) Close(ctx context.Context) error {
	if err := s.inner.Close(ctx); err != nil {
		return err
	}
	s.closed.Store(true)
	return nil
}

func (s *session) Closed() bool {
	return s.closed.Load()
}

type transaction struct {
	tx neo4j.ManagedTransaction
}

// Run executes one statement and returns the first value of its first
// record, or nil when the statement produced no records.
func (t *transaction) Run(ctx context.Context, query string, params map[string]any) (any, error) {
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0].Values) == 0 {
		return nil, nil
	}
	return records[0].Values[0], nil
}
