package engine

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/piwi3910/HoleCut/internal/model"
)

// Scanner turns run centerlines into wall hits.
type Scanner struct {
	tester  HitTester
	workers int
}

func NewScanner(tester HitTester, workers int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{tester: tester, workers: workers}
}

// Scan casts the run's centerline and keeps the hits that lie on the run,
// 0 <= proximity <= length, in the order the tester returned them.
func (s *Scanner) Scan(run model.Run) ([]model.Hit, error) {
	raw, err := s.tester.Find(run.Origin, run.Direction)
	if err != nil {
		return nil, fmt.Errorf("ray cast failed: %w", err)
	}
	for i := 1; i < len(raw); i++ {
		if raw[i].Proximity < raw[i-1].Proximity {
			return nil, fmt.Errorf("%w: %g after %g", ErrHitOrder, raw[i].Proximity, raw[i-1].Proximity)
		}
	}

	hits := make([]model.Hit, 0, len(raw))
	for _, h := range raw {
		if h.Proximity < 0 || h.Proximity > run.Length {
			continue
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// RunHits is the scan outcome of one run.
type RunHits struct {
	Run  model.Run
	Hits []model.Hit
	Err  error
}

// ScanAll scans every run and returns the outcomes in run order. With more
// than one worker the ray casts run concurrently; the tester must then be
// safe for concurrent use.
func (s *Scanner) ScanAll(runs []model.Run) []RunHits {
	out := make([]RunHits, len(runs))
	if s.workers == 1 {
		for i, r := range runs {
			hits, err := s.Scan(r)
			out[i] = RunHits{Run: r, Hits: hits, Err: err}
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, r := range runs {
		g.Go(func() error {
			hits, err := s.Scan(r)
			out[i] = RunHits{Run: r, Hits: hits, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
