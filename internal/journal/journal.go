// Package journal records routed tool-use round trips so they can be listed
// and inspected later.
package journal

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/spachava753/toolbridge/internal/types"
)

// ErrNotFound is returned by Get for unknown ids.
var ErrNotFound = errors.New("journal entry not found")

// Entry is one routed request and the result that went back.
type Entry struct {
	ID        string
	Format    types.ToolUseFormat
	ToolName  string
	ToolUseID string
	Status    types.ToolStatus
	// Request and Response hold the neutral JSON encoding of each side.
	Request   string
	Response  string
	Duration  time.Duration
	CreatedAt time.Time
}

// ListOptions filters List. Zero values mean no filter.
type ListOptions struct {
	ToolName string
	// Limit caps the number of entries; 0 lists everything.
	Limit int
}

// Journal stores entries. Record assigns the id and creation time when they
// are unset and returns the id.
type Journal interface {
	Record(ctx context.Context, e Entry) (string, error)
	Get(ctx context.Context, id string) (Entry, error)
	// List yields entries most recently recorded first.
	List(ctx context.Context, opts ListOptions) iter.Seq2[Entry, error]
}
