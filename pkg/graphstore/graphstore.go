// Package graphstore defines the optional graph persistence capability of
// the pipeline. The graph mirror is advisory: relational writes establish
// canonical identity first, and a failed or absent graph write never
// invalidates them.
package graphstore

import "context"

// Transaction is a handle onto one write transaction of the graph store.
type Transaction interface {
	// Run executes a single statement and returns the first value of its
	// first record, or nil when the statement returns no rows.
	Run(ctx context.Context, query string, params map[string]any) (any, error)
}

// TxFunc is a unit of work executed inside a write transaction. It must be
// a pure function of the transaction handle: the store may invoke it more
// than once when the transaction is retried.
type TxFunc func(ctx context.Context, tx Transaction) (any, error)

// Session is a scoped connection to the graph store. The extraction
// pipeline opens one session per conference and verifies it is closed
// before returning.
type Session interface {
	ExecuteWrite(ctx context.Context, fn TxFunc) (any, error)
	Close(ctx context.Context) error
	Closed() bool
}

// Driver creates sessions. A nil Driver means the graph collaborator is
// absent and the pipeline runs in relational-only mode.
type Driver interface {
	NewSession(ctx context.Context) (Session, error)
	Close(ctx context.Context) error
}
