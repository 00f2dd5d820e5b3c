package cover

import (
	"fmt"
	"io"
	"runtime"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/cover-normalizer/internal/model"
)

// discoverer finds the candidates under a root directory.
type discoverer interface {
	Discover(root string) []model.Candidate
}

// converter turns one candidate into its thumbnail.
type converter interface {
	Convert(c model.Candidate) model.Outcome
}

// Service drives a full normalization run: discovery first, then conversion
// of every candidate on a bounded worker pool.
type Service struct {
	discoverer discoverer
	converter  converter
	workers    int
	out        io.Writer
}

// NewService creates a new Service. Status lines are written to out;
// workers <= 0 uses GOMAXPROCS.
func NewService(d discoverer, c converter, workers int, out io.Writer) *Service {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Service{
		discoverer: d,
		converter:  c,
		workers:    workers,
		out:        out,
	}
}

// Run discovers candidates under root and converts them all.
// Per-file failures are reported as status lines and counted, never returned.
func (s *Service) Run(root string) model.Report {
	report := model.Report{RunID: uuid.New()}
	log := zlog.Logger.With().Str("run_id", report.RunID.String()).Logger()

	log.Info().Str("root", root).Msg("finding covers")

	candidates := s.discoverer.Discover(root)
	report.Discovered = len(candidates)

	fmt.Fprintf(s.out, "Found %d\n", len(candidates))
	log.Info().Int("count", len(candidates)).Msg("covers found")

	// Single consumer owns the sink and the counters.
	outcomes := make(chan model.Outcome, s.workers)
	done := make(chan struct{})

	go func() {
		defer close(done)

		for o := range outcomes {
			fmt.Fprintln(s.out, o.String())

			if o.Succeeded() {
				report.Converted++
				continue
			}

			report.Failed++
			log.Debug().Err(o.Err).Str("path", o.Candidate.Path).Msg("conversion failed")
		}
	}()

	p := pool.New().WithMaxGoroutines(s.workers)
	for _, c := range candidates {
		p.Go(func() {
			outcomes <- s.converter.Convert(c)
		})
	}
	p.Wait()

	close(outcomes)
	<-done

	log.Info().
		Int("discovered", report.Discovered).
		Int("converted", report.Converted).
		Int("failed", report.Failed).
		Msg("run finished")

	return report
}
