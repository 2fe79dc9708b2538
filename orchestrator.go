package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Orchestrator drives selected units through completion and emission
type Orchestrator struct {
	client       Completer
	emitter      *Emitter
	summaryPath  string
	model        string
	maxRetries   int
	requestDelay time.Duration
	failureDelay time.Duration
	overwrite    bool
	sleep        SleepFunc
}

// NewOrchestrator creates an orchestrator from settings
func NewOrchestrator(client Completer, emitter *Emitter, settings *Settings) *Orchestrator {
	return &Orchestrator{
		client:       client,
		emitter:      emitter,
		summaryPath:  settings.SummaryPath(),
		model:        settings.Completion.Model,
		maxRetries:   settings.MaxRetries,
		requestDelay: settings.RequestDelay,
		failureDelay: settings.FailureDelay,
		sleep:        sleepContext,
	}
}

// SetOverwrite regenerates units whose page already exists. Cached
// completions are not reused for them.
func (o *Orchestrator) SetOverwrite(overwrite bool) {
	o.overwrite = overwrite
	if c, ok := o.client.(interface{ SetBypassCache(bool) }); ok {
		c.SetBypassCache(overwrite)
	}
}

// Run processes units in order, then writes hubs and the run summary.
// Cancelling ctx stops the loop between units. The summary covers the units
// reached; hubs are only written for states whose units were all reached,
// since an existing hub is never rewritten.
func (o *Orchestrator) Run(ctx context.Context, units []Unit) (*RunSummary, error) {
	results := make([]Outcome, 0, len(units))
	reached := units

	zap.S().Infof("Processing %d cities...", len(units))

	for i, u := range units {
		if ctx.Err() != nil {
			zap.S().Warnf("Interrupted after %d of %d cities", i, len(units))
			reached = units[:i]
			break
		}

		zap.S().Infof("[%d/%d] Processing: %s", i+1, len(units), u.Key())
		outcome := o.ProcessUnit(ctx, u)
		results = append(results, outcome)

		switch outcome.Status {
		case StatusSkipped:
			zap.S().Infof("  ⊘ Skipped: %s exists", outcome.PagePath)
			continue
		case StatusGenerated:
			zap.S().Infof("  ✓ Generated: %s", outcome.PagePath)
		case StatusFailed:
			zap.S().Errorf("  ✗ Failed %s: %s", u.Key(), outcome.Error)
		}

		if i == len(units)-1 {
			break
		}
		if err := o.sleep(ctx, o.requestDelay); err != nil {
			continue
		}
		if outcome.Status == StatusFailed {
			zap.S().Infof("  → Backing off for %s after failure", o.failureDelay)
			_ = o.sleep(ctx, o.failureDelay)
		}
	}

	o.emitHubs(units, reached)

	summary := NewRunSummary(o.model, results)
	if err := WriteSummary(o.summaryPath, summary); err != nil {
		return summary, errors.Wrap(err, "writing run summary")
	}

	zap.S().Infof("Done: %d succeeded (%d skipped), %d failed. Log: %s",
		summary.Success, summary.Skipped, summary.Failed, o.summaryPath)
	if failed := summary.FailedUnits(); len(failed) > 0 {
		zap.S().Warnf("Failed cities: %s", strings.Join(failed, "; "))
	}
	return summary, nil
}

// ProcessUnit handles a single unit. Every failure becomes a failed outcome.
func (o *Orchestrator) ProcessUnit(ctx context.Context, u Unit) Outcome {
	outcome := Outcome{City: u.City, State: u.State}

	pagePath := o.emitter.PagePath(u)
	if _, err := os.Stat(pagePath); err == nil && !o.overwrite {
		outcome.Success = true
		outcome.Status = StatusSkipped
		outcome.PagePath = pagePath
		return outcome
	}

	zap.S().Infof("  → Generating content...")
	text, err := o.client.Complete(ctx, BuildPrompt(u), o.maxRetries)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	zap.S().Infof("  → Got %d characters", len(text))

	result, err := o.emitter.Emit(u, text)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	outcome.Status = StatusGenerated
	outcome.ContentPath = result.ContentPath
	outcome.PagePath = result.PagePath
	return outcome
}

// emitHubs writes one hub per state, in first-appearance order, for states
// whose selected units were all reached.
func (o *Orchestrator) emitHubs(selected, reached []Unit) {
	byState := make(map[string][]Unit)
	for _, u := range selected {
		byState[u.State] = append(byState[u.State], u)
	}
	reachedCount := make(map[string]int)
	for _, u := range reached {
		reachedCount[u.State]++
	}

	for _, state := range distinctStates(selected) {
		if reachedCount[state] < len(byState[state]) {
			if reachedCount[state] > 0 {
				zap.S().Warnf("⊘ Hub for %s deferred: %d of %d cities reached", state, reachedCount[state], len(byState[state]))
			}
			continue
		}
		path, written, err := o.emitter.EmitHub(state, byState[state])
		switch {
		case err != nil:
			zap.S().Errorf("✗ Hub for %s: %v", state, err)
		case written:
			zap.S().Infof("✓ Hub: %s (%d cities)", path, len(byState[state]))
		default:
			zap.S().Infof("⊘ Hub exists: %s", path)
		}
	}
}
