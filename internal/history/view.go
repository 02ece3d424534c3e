package history

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Fetcher is the remote side of a View. *RemoteClient satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, f Filter) ([]Record, error)
}

// Result is the outcome of a filtered history query. Remote reports
// whether the records came from the broker; Err carries the remote
// failure message when the view fell back to local data.
type Result struct {
	Records []Record
	Remote  bool
	Err     string
}

// View answers filtered history queries, preferring the broker's
// dataset and falling back to the local store when the broker fails or
// has nothing for the filter. Each Query bumps a generation counter so
// a slow fetch that loses to a newer query cannot clobber its result.
type View struct {
	store  *Store
	remote Fetcher
	logger *zap.Logger

	generation atomic.Uint64

	mu   sync.Mutex
	last Result
}

// NewView creates a view over the local store. remote may be nil, in
// which case every query is answered locally.
func NewView(store *Store, remote Fetcher, logger *zap.Logger) *View {
	return &View{store: store, remote: remote, logger: logger}
}

// Query resolves a filter and returns the records. The result is also
// cached as Last unless a newer Query started in the meantime.
func (v *View) Query(ctx context.Context, f Filter) Result {
	gen := v.generation.Add(1)

	res := v.resolve(ctx, f)
	v.setLast(gen, res)
	return res
}

func (v *View) resolve(ctx context.Context, f Filter) Result {
	local := Result{Records: v.store.Query(f)}
	if v.remote == nil || f.Mode == ModeYear {
		return local
	}

	records, err := v.remote.Fetch(ctx, f)
	if err != nil {
		v.logger.Warn("remote history fetch failed, serving local records", zap.Error(err))
		local.Err = err.Error()
		return local
	}
	if len(records) == 0 {
		return local
	}
	return Result{Records: records, Remote: true}
}

// Last returns the most recent query result.
func (v *View) Last() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

func (v *View) setLast(gen uint64, res Result) {
	if gen != v.generation.Load() {
		// A newer query superseded this one.
		return
	}
	v.mu.Lock()
	v.last = res
	v.mu.Unlock()
}
