// Package statemachine is the authoritative gate for melding lifecycle
// mutation. Every state change goes through Machine.Transition; nothing else
// in the codebase writes Melding.State.
package statemachine

import (
	"fmt"

	"meldingen/internal/melding/models"
	"meldingen/pkg/platform/sentinel"
)

// InvalidTransitionError reports a (state, transition) pair the table does
// not permit. It wraps sentinel.ErrInvalidTransition so callers can match it
// without depending on this package's type.
type InvalidTransitionError struct {
	State      models.State
	Transition models.Transition
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q not allowed from state %q", e.Transition, e.State)
}

func (e *InvalidTransitionError) Unwrap() error {
	return sentinel.ErrInvalidTransition
}

type key struct {
	state      models.State
	transition models.Transition
}

// Machine validates and applies named transitions against a melding's
// current state. The table is built once at construction and never mutated,
// so a single Machine is safe to share across goroutines operating on
// different meldingen. Concurrent transitions on the same melding must be
// serialized by the persistence boundary.
type Machine struct {
	table map[key]models.State
}

// New builds the canonical transition table.
func New() *Machine {
	m := &Machine{table: make(map[key]models.State)}

	// Form flow. The melder may revisit earlier steps, so each step accepts
	// its own state and everything the form has already passed through.
	m.allow(models.TransitionClassify, models.StateClassified,
		models.StateNew,
		models.StateClassified,
		models.StateQuestionsAnswered,
		models.StateAttachmentsAdded,
		models.StateLocationSubmitted,
		models.StateContactInfoAdded,
	)
	m.allow(models.TransitionAnswerQuestions, models.StateQuestionsAnswered,
		models.StateClassified,
		models.StateQuestionsAnswered,
	)
	m.allow(models.TransitionAddAttachments, models.StateAttachmentsAdded,
		models.StateClassified,
		models.StateQuestionsAnswered,
		models.StateAttachmentsAdded,
	)
	m.allow(models.TransitionSubmitLocation, models.StateLocationSubmitted,
		models.StateClassified,
		models.StateQuestionsAnswered,
		models.StateAttachmentsAdded,
		models.StateLocationSubmitted,
	)
	m.allow(models.TransitionAddContactInfo, models.StateContactInfoAdded,
		models.StateLocationSubmitted,
		models.StateContactInfoAdded,
	)

	// Contact info is optional, so submission is possible straight from
	// location_submitted.
	m.allow(models.TransitionSubmit, models.StateSubmitted,
		models.StateLocationSubmitted,
		models.StateContactInfoAdded,
	)

	// Backoffice flow.
	m.allow(models.TransitionProcess, models.StateProcessing,
		models.StateSubmitted,
		models.StateAwaitingProcessing,
		models.StatePlanned,
		models.StateReopened,
	)
	m.allow(models.TransitionAwaitProcessing, models.StateAwaitingProcessing,
		models.StateSubmitted,
		models.StateReopened,
	)
	m.allow(models.TransitionPlan, models.StatePlanned,
		models.StateAwaitingProcessing,
		models.StateProcessing,
	)
	m.allow(models.TransitionComplete, models.StateCompleted,
		models.StateSubmitted,
		models.StateAwaitingProcessing,
		models.StateProcessing,
		models.StatePlanned,
	)
	m.allow(models.TransitionCancel, models.StateCanceled,
		models.StateSubmitted,
		models.StateAwaitingProcessing,
		models.StateProcessing,
		models.StatePlanned,
		models.StateReopenRequested,
	)
	m.allow(models.TransitionRequestReopen, models.StateReopenRequested,
		models.StateCompleted,
	)
	m.allow(models.TransitionReopen, models.StateReopened,
		models.StateCompleted,
		models.StateReopenRequested,
	)

	return m
}

func (m *Machine) allow(t models.Transition, next models.State, from ...models.State) {
	for _, s := range from {
		m.table[key{state: s, transition: t}] = next
	}
}

// Transition mutates melding.State in place, or returns an
// *InvalidTransitionError leaving the melding untouched.
func (m *Machine) Transition(melding *models.Melding, t models.Transition) error {
	next, ok := m.table[key{state: melding.State, transition: t}]
	if !ok {
		return &InvalidTransitionError{State: melding.State, Transition: t}
	}
	melding.State = next
	return nil
}

// Next reports the target state for a (state, transition) pair without
// applying it. Used by callers that need to announce a transition's effect.
func (m *Machine) Next(s models.State, t models.Transition) (models.State, bool) {
	next, ok := m.table[key{state: s, transition: t}]
	return next, ok
}
