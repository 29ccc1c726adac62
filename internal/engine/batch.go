package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/piwi3910/HoleCut/internal/config"
	"github.com/piwi3910/HoleCut/internal/model"
)

// Coordinator runs one placement batch: it checks the preconditions, opens
// a single edit scope, scans every run, places an opening per hit and
// commits. Duplicate openings are never merged, so running the same batch
// twice places every opening twice.
type Coordinator struct {
	models   ModelProvider
	settings model.Settings
	log      *logrus.Entry
}

func NewCoordinator(models ModelProvider, settings model.Settings) *Coordinator {
	if !settings.FailurePolicy.Valid() {
		settings.FailurePolicy = model.PolicyCollect
	}
	return &Coordinator{
		models:   models,
		settings: settings,
		log:      config.NamedLogger("engine"),
	}
}

// SetLogger replaces the coordinator's logger.
func (c *Coordinator) SetLogger(log *logrus.Entry) {
	c.log = log
}

// inputs are the collaborators resolved before any scope is opened.
type inputs struct {
	companion RunEnumerator
	target    TargetModel
	template  Template
	runs      []RunDescriptor
	tester    HitTester
}

// Run executes the batch. A *PreconditionError means nothing was touched.
// Any other error means the scope was rolled back and the result is in the
// Aborted state. Under PolicyCollect, hit faults do not fail the batch; they
// are listed in result.Failures.
func (c *Coordinator) Run() (model.BatchResult, error) {
	result := model.NewBatchResult("")
	log := c.log.WithField("batch", result.ID)

	in, err := c.resolve()
	if err != nil {
		result.FinishedAt = time.Now().UTC()
		log.WithError(err).Error("batch cancelled")
		return result, err
	}
	result.Document = in.target.Title()
	log.Infof("companion %q, target %q, template %q, %d runs",
		in.companion.Title(), result.Document, in.template.Name(), len(in.runs))

	scope, err := in.target.Begin(c.settings.TransactionName)
	if err != nil {
		result.FinishedAt = time.Now().UTC()
		return result, fmt.Errorf("failed to open edit scope: %w", err)
	}
	c.transition(&result, log, model.BatchScopeOpen)

	if err := c.execute(&result, log, in, scope); err != nil {
		c.abort(&result, log, scope)
		return result, err
	}
	if err := scope.Commit(); err != nil {
		c.abort(&result, log, scope)
		return result, fmt.Errorf("failed to commit: %w", err)
	}
	c.transition(&result, log, model.BatchCommitted)
	result.FinishedAt = time.Now().UTC()
	log.Infof("placed %d openings, %d failures", len(result.Placements), len(result.Failures))
	return result, nil
}

// resolve checks the preconditions in order: companion model, opening
// template, runs, 3D view.
func (c *Coordinator) resolve() (inputs, error) {
	var in inputs
	var err error

	if in.companion, err = c.models.Companion(Contains(c.settings.CompanionTitle)); err != nil {
		return in, &PreconditionError{Cause: CauseCompanion, Err: err}
	}
	if in.target, err = c.models.Target(); err != nil {
		return in, &PreconditionError{Cause: CauseTarget, Err: err}
	}
	if in.template, err = in.target.OpeningTemplate(Contains(c.settings.TemplateName)); err != nil {
		return in, &PreconditionError{Cause: CauseTemplate, Err: err}
	}
	if in.runs, err = in.companion.Runs(); err != nil {
		return in, &PreconditionError{Cause: CauseRuns, Err: err}
	}
	if len(in.runs) == 0 {
		return in, &PreconditionError{Cause: CauseRuns}
	}
	if in.tester, err = in.target.HitTester(); err != nil {
		return in, &PreconditionError{Cause: CauseView, Err: err}
	}
	return in, nil
}

func (c *Coordinator) execute(result *model.BatchResult, log *logrus.Entry, in inputs, scope EditScope) error {
	if !in.template.IsActive() {
		if err := in.template.Activate(); err != nil {
			return fmt.Errorf("failed to activate template %q: %w", in.template.Name(), err)
		}
		log.Debugf("activated template %q", in.template.Name())
	}

	c.transition(result, log, model.BatchScanning)
	runs := make([]model.Run, 0, len(in.runs))
	for _, d := range in.runs {
		run, err := BuildRun(d)
		if err != nil {
			if err := c.recordOrFail(result, log, &PlacementError{RunID: d.ID(), Stage: model.StageSection, Err: err}); err != nil {
				return err
			}
			continue
		}
		runs = append(runs, run)
	}
	scans := NewScanner(in.tester, c.settings.ScanWorkers).ScanAll(runs)
	result.RunsScanned = len(runs)

	c.transition(result, log, model.BatchPlacing)
	placer := NewPlacer(scope, in.template, c.settings.WidthParameter, c.settings.HeightParameter)
	for _, s := range scans {
		if s.Err != nil {
			if err := c.recordOrFail(result, log, &PlacementError{RunID: s.Run.ID, Stage: model.StageScan, Err: s.Err}); err != nil {
				return err
			}
			continue
		}
		result.HitsFound += len(s.Hits)
		log.Debugf("run %s (%s, length %.3f): %d hits", s.Run.ID, s.Run.Section, s.Run.Length, len(s.Hits))

		for _, hit := range s.Hits {
			p, err := c.placeHit(scope, placer, in.target, s.Run, hit)
			if err != nil {
				if err := c.recordOrFail(result, log, err); err != nil {
					return err
				}
				continue
			}
			result.Placements = append(result.Placements, p)
		}
	}
	return nil
}

// placeHit resolves, sizes and places one opening. Under PolicyCollect the
// placement runs inside a savepoint so a failure leaves no partial instance.
// A returned *PlacementError is recoverable; anything else is not.
func (c *Coordinator) placeHit(scope EditScope, placer *Placer, lookup ElementLookup, run model.Run, hit model.Hit) (model.Placement, error) {
	fail := func(stage model.FailureStage, err error) *PlacementError {
		return &PlacementError{RunID: run.ID, WallID: hit.WallID, Proximity: hit.Proximity, Stage: stage, Err: err}
	}

	level, err := ResolveLevel(lookup, hit.WallID)
	if err != nil {
		return model.Placement{}, fail(model.StageLevel, err)
	}
	width, height := SizeOpening(run.Section)

	if c.settings.FailurePolicy == model.PolicyFailFast {
		p, err := placer.Place(run, hit, level, width, height)
		if err != nil {
			return model.Placement{}, fail(model.StagePlace, err)
		}
		return p, nil
	}

	sp, err := scope.Savepoint()
	if err != nil {
		return model.Placement{}, fmt.Errorf("failed to open savepoint: %w", err)
	}
	p, err := placer.Place(run, hit, level, width, height)
	if err != nil {
		if rbErr := sp.RollBack(); rbErr != nil {
			return model.Placement{}, fmt.Errorf("failed to roll back savepoint after %v: %w", err, rbErr)
		}
		return model.Placement{}, fail(model.StagePlace, err)
	}
	if err := sp.Release(); err != nil {
		return model.Placement{}, fmt.Errorf("failed to release savepoint: %w", err)
	}
	return p, nil
}

// recordOrFail keeps a recoverable fault as a failure record under
// PolicyCollect and returns it otherwise.
func (c *Coordinator) recordOrFail(result *model.BatchResult, log *logrus.Entry, err error) error {
	var perr *PlacementError
	if c.settings.FailurePolicy == model.PolicyFailFast || !errors.As(err, &perr) {
		return err
	}
	log.WithError(perr.Err).Warnf("skipped run %s wall %s (%s)", perr.RunID, perr.WallID, perr.Stage)
	result.Failures = append(result.Failures, perr.Failure())
	return nil
}

func (c *Coordinator) abort(result *model.BatchResult, log *logrus.Entry, scope EditScope) {
	if err := scope.RollBack(); err != nil {
		log.WithError(err).Error("rollback failed")
	}
	result.Placements = nil
	c.transition(result, log, model.BatchAborted)
	result.FinishedAt = time.Now().UTC()
}

func (c *Coordinator) transition(result *model.BatchResult, log *logrus.Entry, to model.BatchState) {
	log.Infof("%s -> %s", result.State, to)
	result.State = to
}
