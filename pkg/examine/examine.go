// Package examine implements the fixpoint examination loop that drives
// an Excavation to completion (spec.md §4.3, §4.4): a single-threaded,
// cooperative scheduler that repeatedly offers every untaken artifact
// to every registered examiner, in registration order, until a full
// pass produces no new artifacts.
package examine

import (
	"context"
	"fmt"

	"github.com/aa-labs/autoarchaeologist/pkg/aaerr"
	"github.com/aa-labs/autoarchaeologist/pkg/artifact"
	"github.com/aa-labs/autoarchaeologist/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opencensus.io/trace"
)

// Examiner is re-exported from pkg/artifact: it is defined there to
// avoid an import cycle (Excavation holds a slice of Examiners, and
// Driver operates on both Excavation and Examiner), but examine.Driver
// is where it is actually invoked from, so this alias is the name
// application code is expected to implement against.
type Examiner = artifact.Examiner

// ExaminerFunc adapts a plain function to the Examiner interface for
// examiners that need no name-qualified state of their own.
type ExaminerFunc struct {
	FuncName string
	Func     func(a *artifact.Artifact) error
}

// Name implements Examiner.
func (f ExaminerFunc) Name() string { return f.FuncName }

// Examine implements Examiner.
func (f ExaminerFunc) Examine(a *artifact.Artifact) error { return f.Func(a) }

// Driver runs the fixpoint loop over one Excavation (spec.md §4.4).
type Driver struct {
	exc *artifact.Excavation
	log zerolog.Logger
	reg *prometheus.Registry

	passes       prometheus.Counter
	examinations prometheus.Counter
	failures     *prometheus.CounterVec

	lastCreation int
}

// NewDriver constructs a Driver for exc, logging through log and
// registering its own metrics on a fresh, per-Driver registry (so that
// concurrently running Drivers, e.g. in tests, never collide on
// prometheus's default global registry).
func NewDriver(exc *artifact.Excavation, log zerolog.Logger) *Driver {
	reg := prometheus.NewRegistry()
	d := &Driver{
		exc: exc,
		log: log.With().Str("excavation_id", exc.ID().String()).Logger(),
		reg: reg,
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoarchaeologist",
			Subsystem: "driver",
			Name:      "passes_total",
			Help:      "Number of fixpoint passes run over the excavation.",
		}),
		examinations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "autoarchaeologist",
			Subsystem: "driver",
			Name:      "examinations_total",
			Help:      "Number of (artifact, examiner) invocations performed.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoarchaeologist",
			Subsystem: "driver",
			Name:      "examiner_failures_total",
			Help:      "Number of examiner invocations that returned an error.",
		}, []string{"examiner"}),
	}
	reg.MustRegister(d.passes, d.examinations, d.failures)
	return d
}

// Registry exposes the Driver's private metrics registry, e.g. for a
// test or a one-off /metrics handler to scrape.
func (d *Driver) Registry() *prometheus.Registry { return d.reg }

// Run drives the excavation to a fixpoint: it repeatedly walks every
// artifact created since the previous pass (in creation order,
// spec.md §4.4) through every registered examiner, in registration
// order, claiming each artifact via MarkTaken and reconciling its
// layout via Examined once every examiner has had a turn. It stops
// when a full pass examines zero artifacts. If cfg.MaxArtifacts is
// nonzero and the excavation's artifact count exceeds it, Run returns
// an ExaminationDiverged error (spec.md §5).
func (d *Driver) Run(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "examine.Driver.Run")
	defer span.End()

	bound := d.exc.Config().MaxArtifacts

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := d.lastCreation
		end := d.exc.CreationLen()
		if start == end {
			d.log.Debug().Msg("fixpoint reached")
			return nil
		}
		d.passes.Inc()

		for i := start; i < end; i++ {
			a := d.exc.CreationAt(i)
			if err := d.examineOne(ctx, a); err != nil {
				return err
			}
			if bound > 0 && d.exc.CreationLen() > bound {
				return aaerr.NewExaminationDiverged(bound)
			}
		}
		d.lastCreation = end
	}
}

func (d *Driver) examineOne(ctx context.Context, a *artifact.Artifact) error {
	_, span := trace.StartSpan(ctx, "examine.Driver.examineOne")
	defer span.End()

	if a.IsTaken() {
		return nil
	}
	a.MarkTaken()

	for _, ex := range d.exc.Examiners() {
		d.examinations.Inc()
		if err := d.runExaminer(ex, a); err != nil {
			return err
		}
	}
	return a.Examined()
}

// runExaminer invokes one examiner against one artifact, recovering
// from a panic the same way a returned error is handled: recorded as
// a comment on the artifact and logged, never propagated to the
// caller. A misbehaving examiner must not stall the whole excavation.
func (d *Driver) runExaminer(ex Examiner, a *artifact.Artifact) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.failures.WithLabelValues(ex.Name()).Inc()
			d.log.Error().
				Str("examiner", ex.Name()).
				Str("digest", a.Digest().String()).
				Interface("panic", r).
				Msg("examiner panicked")
			a.AddComment(fmt.Sprintf("examiner %s failed: panic: %v", ex.Name(), r))
			err = nil
		}
	}()

	if exErr := ex.Examine(a); exErr != nil {
		wrapped := util.StatusWrapf(exErr, "examiner %s failed", ex.Name())
		d.failures.WithLabelValues(ex.Name()).Inc()
		d.log.Warn().
			Str("examiner", ex.Name()).
			Str("digest", a.Digest().String()).
			Err(wrapped).
			Msg("examiner returned an error")
		a.AddComment(fmt.Sprintf("examiner %s failed: %v", ex.Name(), exErr))
	}
	return nil
}
