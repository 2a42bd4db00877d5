// Package assembler owns the running state of a single answer stream and
// decides, for each payload extraction, what changed.
package assembler

import (
	"log/slog"
	"slices"

	"github.com/papercomputeco/askstream/pkg/blocks"
)

// State is the semantic state accumulated from a stream.
type State struct {
	// FullAnswer is the latest complete answer. It is replaced, never
	// concatenated.
	FullAnswer string

	// Sources is replaced wholesale by every non-empty extraction.
	Sources []blocks.NormalizedSource

	// RelatedQueries is replaced by every payload that carries them.
	RelatedQueries []string

	// Completed flips to true at most once.
	Completed bool
}

// Delta reports what a single Apply changed.
type Delta struct {
	AnswerChanged          bool
	SourcesReplaced        bool
	RelatedQueriesReplaced bool

	// Completed is set when this Apply moved the state to completed.
	Completed bool
}

// Assembler applies extractions to a State. It is not safe for concurrent
// use: a stream has exactly one owner.
type Assembler struct {
	state  State
	logger *slog.Logger
}

// New creates an Assembler with empty state.
func New(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Apply folds one payload's extraction into the state.
//
// The answer is replaced when the extracted string is non-empty and differs
// from the held one. Sources are replaced whenever the extraction carries
// any, regardless of whether the answer changed. Related queries follow the
// same last-writer-wins rule.
func (a *Assembler) Apply(ex blocks.Extraction) Delta {
	var d Delta

	if ex.Answer != "" && ex.Answer != a.state.FullAnswer {
		a.state.FullAnswer = ex.Answer
		d.AnswerChanged = true
		a.logger.Debug("answer updated", "length", len(ex.Answer))
	}

	if len(ex.Sources) > 0 {
		a.state.Sources = slices.Clone(ex.Sources)
		d.SourcesReplaced = true
		a.logger.Debug("sources replaced", "count", len(ex.Sources))
	}

	if ex.HasRelatedQueries {
		a.state.RelatedQueries = slices.Clone(ex.RelatedQueries)
		d.RelatedQueriesReplaced = true
		a.logger.Debug("related queries replaced", "count", len(ex.RelatedQueries))
	}

	if ex.Completed {
		d.Completed = a.MarkCompleted()
	}

	return d
}

// MarkCompleted flips the completed flag. It reports whether this call made
// the transition; later calls are no-ops.
func (a *Assembler) MarkCompleted() bool {
	if a.state.Completed {
		return false
	}
	a.state.Completed = true
	return true
}

// Answer returns the held answer.
func (a *Assembler) Answer() string {
	return a.state.FullAnswer
}

// Snapshot returns a copy of the state that later Apply calls do not affect.
func (a *Assembler) Snapshot() State {
	return State{
		FullAnswer:     a.state.FullAnswer,
		Sources:        slices.Clone(a.state.Sources),
		RelatedQueries: slices.Clone(a.state.RelatedQueries),
		Completed:      a.state.Completed,
	}
}
