package geo

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/exporter-premium/internal/table"
)

// ErrEmptyReferenceSet is returned when a reference set has no points.
var ErrEmptyReferenceSet = eris.New("geo: empty reference set")

// Proximity is the nearest-member result for one firm against one set.
type Proximity struct {
	Set        string
	DistanceKM float64
	Index      int    // position of the nearest member in the set
	Label      string // empty for unlabeled sets
}

// Engine computes per-set minimum distances for firm locations. It holds
// only immutable reference data and is safe for concurrent use.
type Engine struct {
	sets        []ReferenceSet
	concurrency int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithConcurrency bounds the number of goroutines Augment uses.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine validates the reference sets and returns an Engine. Empty sets,
// label/point count mismatches and duplicate names or output columns are
// configuration errors.
func NewEngine(sets []ReferenceSet, opts ...EngineOption) (*Engine, error) {
	if len(sets) == 0 {
		return nil, eris.New("geo: at least one reference set is required")
	}

	seenName := make(map[string]bool, len(sets))
	seenCol := make(map[string]bool, len(sets)*2)
	owned := make([]ReferenceSet, len(sets))

	for i, s := range sets {
		if s.Name == "" {
			return nil, eris.Errorf("geo: reference set %d has no name", i)
		}
		if len(s.Points) == 0 {
			return nil, eris.Wrapf(ErrEmptyReferenceSet, "set %q", s.Name)
		}
		if s.Labeled() && len(s.Labels) != len(s.Points) {
			return nil, eris.Errorf("geo: set %q has %d labels for %d points", s.Name, len(s.Labels), len(s.Points))
		}
		if seenName[s.Name] {
			return nil, eris.Errorf("geo: duplicate reference set %q", s.Name)
		}
		seenName[s.Name] = true

		cols := []string{s.DistanceColumnName()}
		if s.Labeled() {
			cols = append(cols, s.LabelColumnName())
		}
		for _, c := range cols {
			if seenCol[c] {
				return nil, eris.Errorf("geo: output column %q used by more than one set", c)
			}
			seenCol[c] = true
		}

		s.Points = clonePoints(s.Points)
		if s.Labeled() {
			s.Labels = append([]string(nil), s.Labels...)
		}
		owned[i] = s
	}

	e := &Engine{sets: owned, concurrency: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Sets returns the registered reference sets in order.
func (e *Engine) Sets() []ReferenceSet {
	out := make([]ReferenceSet, len(e.sets))
	copy(out, e.sets)
	return out
}

// NearestIn returns the minimum distance from p to any member of set and the
// index of that member. Ties keep the earliest member. set must be non-empty.
func NearestIn(p GeoPoint, set ReferenceSet) (float64, int) {
	best := math.Inf(1)
	idx := -1
	for i, q := range set.Points {
		if d := Distance(p, q); d < best {
			best = d
			idx = i
		}
	}
	return best, idx
}

// Nearest computes one Proximity per registered set, in registration order.
func (e *Engine) Nearest(p GeoPoint) []Proximity {
	out := make([]Proximity, len(e.sets))
	for i, s := range e.sets {
		d, idx := NearestIn(p, s)
		out[i] = Proximity{Set: s.Name, DistanceKM: d, Index: idx}
		if s.Labeled() {
			out[i].Label = s.Labels[idx]
		}
	}
	return out
}

// AugmentStats summarises an Augment pass.
type AugmentStats struct {
	Firms   int
	Located int
	// Skipped counts rows whose coordinates could not be parsed; their
	// feature cells are left empty.
	Skipped int
}

// Augment returns a copy of tbl with a distance column per set and a label
// column per labeled set appended. Rows are processed in parallel; output
// order matches input order.
func (e *Engine) Augment(ctx context.Context, tbl *table.Table, latCol, lonCol string) (*table.Table, AugmentStats, error) {
	log := zap.L().With(zap.String("component", "geo.engine"))

	lats, err := tbl.Numeric(latCol)
	if err != nil {
		return nil, AugmentStats{}, eris.Wrap(err, "geo: latitude")
	}
	lons, err := tbl.Numeric(lonCol)
	if err != nil {
		return nil, AugmentStats{}, eris.Wrap(err, "geo: longitude")
	}

	n := tbl.Len()
	results := make([][]Proximity, n)

	g, gCtx := errgroup.WithContext(ctx)
	for _, span := range chunks(n, e.concurrency) {
		g.Go(func() error {
			for i := span[0]; i < span[1]; i++ {
				if gCtx.Err() != nil {
					return eris.Wrap(gCtx.Err(), "geo: augment cancelled")
				}
				if math.IsNaN(lats[i]) || math.IsNaN(lons[i]) {
					continue
				}
				results[i] = e.Nearest(GeoPoint{Lat: lats[i], Lon: lons[i]})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, AugmentStats{}, err
	}

	stats := AugmentStats{Firms: n}
	var cols []table.Column
	for si, s := range e.sets {
		dist := table.Column{Name: s.DistanceColumnName(), Values: make([]string, n)}
		label := table.Column{Name: s.LabelColumnName(), Values: make([]string, n)}
		for i, r := range results {
			if r == nil {
				continue
			}
			dist.Values[i] = table.FormatFloat(r[si].DistanceKM)
			label.Values[i] = r[si].Label
		}
		cols = append(cols, dist)
		if s.Labeled() {
			cols = append(cols, label)
		}
	}
	for _, r := range results {
		if r != nil {
			stats.Located++
		}
	}
	stats.Skipped = stats.Firms - stats.Located

	out, err := tbl.WithColumns(cols...)
	if err != nil {
		return nil, AugmentStats{}, eris.Wrap(err, "geo: append proximity columns")
	}

	if stats.Skipped > 0 {
		log.Warn("firms without usable coordinates",
			zap.Int("skipped", stats.Skipped),
			zap.Int("firms", stats.Firms),
		)
	}
	log.Info("proximity features computed",
		zap.Int("firms", stats.Firms),
		zap.Int("sets", len(e.sets)),
	)

	return out, stats, nil
}

// chunks splits [0, n) into at most parts contiguous half-open spans.
func chunks(n, parts int) [][2]int {
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	var out [][2]int
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		out = append(out, [2]int{lo, hi})
	}
	return out
}
