package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/investorlens/pkg/config"
	"github.com/soundprediction/investorlens/pkg/types"
)

// BreakerStore wraps a GraphStore with circuit breaking. While the breaker is
// open every call fails immediately with types.ErrGraphStoreUnavailable.
type BreakerStore struct {
	store  GraphStore
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// NewBreakerStore creates a circuit-breaking GraphStore. When cfg is disabled
// the store is returned unwrapped.
func NewBreakerStore(store GraphStore, cfg config.CircuitBreakerConfig, logger *slog.Logger) GraphStore {
	if !cfg.Enabled {
		return store
	}
	if logger == nil {
		logger = slog.Default()
	}

	b := &BreakerStore{store: store, logger: logger}
	name := fmt.Sprintf("graph-store-%s", store.Provider())
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("circuit breaker tripped", "breaker", name, "from", from.String(), "to", to.String())
				return
			}
			logger.Info("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Missing companies and caller cancellation say nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrCompanyNotFound) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
	}
	b.cb = gobreaker.NewCircuitBreaker(st)
	return b
}

// State reports the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, &StoreError{Op: op, Err: fmt.Errorf("%w: %v", types.ErrGraphStoreUnavailable, err)}
		}
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return v, nil
}

func (b *BreakerStore) GetCompany(ctx context.Context, id string) (*types.CompanyProfile, error) {
	return execute(b, "get_company", func() (*types.CompanyProfile, error) {
		return b.store.GetCompany(ctx, id)
	})
}

func (b *BreakerStore) ListCompanies(ctx context.Context) ([]types.CompanyProfile, error) {
	return execute(b, "list_companies", func() ([]types.CompanyProfile, error) {
		return b.store.ListCompanies(ctx)
	})
}

func (b *BreakerStore) TopByAttribute(ctx context.Context, property string, limit int) ([]types.CompanyProfile, error) {
	return execute(b, "top_by_attribute", func() ([]types.CompanyProfile, error) {
		return b.store.TopByAttribute(ctx, property, limit)
	})
}

func (b *BreakerStore) Competitors(ctx context.Context, id string) ([]Neighbor, error) {
	return execute(b, "competitors", func() ([]Neighbor, error) {
		return b.store.Competitors(ctx, id)
	})
}

func (b *BreakerStore) SegmentPeers(ctx context.Context, id string) ([]Neighbor, error) {
	return execute(b, "segment_peers", func() ([]Neighbor, error) {
		return b.store.SegmentPeers(ctx, id)
	})
}

func (b *BreakerStore) ThemePeers(ctx context.Context, id string) ([]Neighbor, error) {
	return execute(b, "theme_peers", func() ([]Neighbor, error) {
		return b.store.ThemePeers(ctx, id)
	})
}

func (b *BreakerStore) Disruptions(ctx context.Context, id string) ([]Neighbor, error) {
	return execute(b, "disruptions", func() ([]Neighbor, error) {
		return b.store.Disruptions(ctx, id)
	})
}

func (b *BreakerStore) Partners(ctx context.Context, id string) ([]Neighbor, error) {
	return execute(b, "partners", func() ([]Neighbor, error) {
		return b.store.Partners(ctx, id)
	})
}

func (b *BreakerStore) PartnershipCounts(ctx context.Context, ids []string) (map[string]int, error) {
	return execute(b, "partnership_counts", func() (map[string]int, error) {
		return b.store.PartnershipCounts(ctx, ids)
	})
}

func (b *BreakerStore) EdgesBetween(ctx context.Context, a, c string) ([]types.DirectEdge, error) {
	return execute(b, "edges_between", func() ([]types.DirectEdge, error) {
		return b.store.EdgesBetween(ctx, a, c)
	})
}

func (b *BreakerStore) CommonCompetitors(ctx context.Context, a, c string) ([]types.CompanyProfile, error) {
	return execute(b, "common_competitors", func() ([]types.CompanyProfile, error) {
		return b.store.CommonCompetitors(ctx, a, c)
	})
}

func (b *BreakerStore) SharedSegments(ctx context.Context, a, c string) ([]types.Segment, error) {
	return execute(b, "shared_segments", func() ([]types.Segment, error) {
		return b.store.SharedSegments(ctx, a, c)
	})
}

func (b *BreakerStore) SharedThemes(ctx context.Context, a, c string) ([]string, error) {
	return execute(b, "shared_themes", func() ([]string, error) {
		return b.store.SharedThemes(ctx, a, c)
	})
}

func (b *BreakerStore) Subgraph(ctx context.Context, ids []string, center string) (*types.GraphVisualization, error) {
	return execute(b, "subgraph", func() (*types.GraphVisualization, error) {
		return b.store.Subgraph(ctx, ids, center)
	})
}

func (b *BreakerStore) CountCompanies(ctx context.Context) (int64, error) {
	return execute(b, "count_companies", func() (int64, error) {
		return b.store.CountCompanies(ctx)
	})
}

func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := execute(b, "ping", func() (struct{}, error) {
		return struct{}{}, b.store.Ping(ctx)
	})
	return err
}

// Close bypasses the breaker.
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.store.Close(ctx)
}

func (b *BreakerStore) Provider() GraphProvider {
	return b.store.Provider()
}
