package statemachine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meldingen/internal/melding/models"
	"meldingen/pkg/platform/sentinel"
	"meldingen/pkg/testutil"
)

func TestMachine_Transition(t *testing.T) {
	machine := New()

	tests := []struct {
		name       string
		from       models.State
		transition models.Transition
		want       models.State
	}{
		{"classify from new", models.StateNew, models.TransitionClassify, models.StateClassified},
		{"reclassify after location", models.StateLocationSubmitted, models.TransitionClassify, models.StateClassified},
		{"answer questions", models.StateClassified, models.TransitionAnswerQuestions, models.StateQuestionsAnswered},
		{"add attachments after questions", models.StateQuestionsAnswered, models.TransitionAddAttachments, models.StateAttachmentsAdded},
		{"location straight after classification", models.StateClassified, models.TransitionSubmitLocation, models.StateLocationSubmitted},
		{"contact info", models.StateLocationSubmitted, models.TransitionAddContactInfo, models.StateContactInfoAdded},
		{"submit without contact info", models.StateLocationSubmitted, models.TransitionSubmit, models.StateSubmitted},
		{"submit with contact info", models.StateContactInfoAdded, models.TransitionSubmit, models.StateSubmitted},
		{"process submitted", models.StateSubmitted, models.TransitionProcess, models.StateProcessing},
		{"queue submitted", models.StateSubmitted, models.TransitionAwaitProcessing, models.StateAwaitingProcessing},
		{"plan from processing", models.StateProcessing, models.TransitionPlan, models.StatePlanned},
		{"complete straight from submitted", models.StateSubmitted, models.TransitionComplete, models.StateCompleted},
		{"complete planned", models.StatePlanned, models.TransitionComplete, models.StateCompleted},
		{"cancel processing", models.StateProcessing, models.TransitionCancel, models.StateCanceled},
		{"request reopen", models.StateCompleted, models.TransitionRequestReopen, models.StateReopenRequested},
		{"reopen requested", models.StateReopenRequested, models.TransitionReopen, models.StateReopened},
		{"process reopened", models.StateReopened, models.TransitionProcess, models.StateProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Melding{State: tt.from}
			err := machine.Transition(m, tt.transition)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.State)
		})
	}
}

func TestMachine_Transition_Rejected(t *testing.T) {
	machine := New()

	tests := []struct {
		name       string
		from       models.State
		transition models.Transition
	}{
		{"submit before location", models.StateClassified, models.TransitionSubmit},
		{"submit from new", models.StateNew, models.TransitionSubmit},
		{"guest step after submission", models.StateSubmitted, models.TransitionSubmitLocation},
		{"classify after submission", models.StateSubmitted, models.TransitionClassify},
		{"process a form melding", models.StateLocationSubmitted, models.TransitionProcess},
		{"complete canceled", models.StateCanceled, models.TransitionComplete},
		{"reopen processing", models.StateProcessing, models.TransitionReopen},
		{"cancel completed", models.StateCompleted, models.TransitionCancel},
		{"unknown transition name", models.StateNew, models.Transition("vanish")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &models.Melding{State: tt.from}
			err := machine.Transition(m, tt.transition)

			require.Error(t, err)
			assert.True(t, errors.Is(err, sentinel.ErrInvalidTransition))

			var ite *InvalidTransitionError
			require.True(t, errors.As(err, &ite))
			assert.Equal(t, tt.from, ite.State)
			assert.Equal(t, tt.transition, ite.Transition)

			assert.Equal(t, tt.from, m.State, "state must not change on rejection")
		})
	}
}

// TestMachine_FormBackofficeSeparation verifies that no backoffice transition
// is reachable from a form state and no form transition is reachable from a
// backoffice state. TransitionSubmit is the single bridge.
func TestMachine_FormBackofficeSeparation(t *testing.T) {
	machine := New()

	formTransitions := []models.Transition{
		models.TransitionClassify,
		models.TransitionAnswerQuestions,
		models.TransitionAddAttachments,
		models.TransitionSubmitLocation,
		models.TransitionAddContactInfo,
		models.TransitionSubmit,
	}
	backofficeTransitions := []models.Transition{
		models.TransitionProcess,
		models.TransitionAwaitProcessing,
		models.TransitionPlan,
		models.TransitionComplete,
		models.TransitionCancel,
		models.TransitionRequestReopen,
		models.TransitionReopen,
	}

	for _, s := range models.FormStates() {
		for _, tr := range backofficeTransitions {
			_, ok := machine.Next(s, tr)
			assert.False(t, ok, "backoffice transition %q reachable from form state %q", tr, s)
		}
	}

	for _, s := range models.BackofficeStates() {
		for _, tr := range formTransitions {
			_, ok := machine.Next(s, tr)
			assert.False(t, ok, "form transition %q reachable from backoffice state %q", tr, s)
		}
	}
}

// TestMachine_TargetsAreDeclaredStates guards the invariant that the table
// only ever produces members of the declared state set.
func TestMachine_TargetsAreDeclaredStates(t *testing.T) {
	machine := New()

	declared := map[models.State]bool{}
	for _, s := range models.FormStates() {
		declared[s] = true
	}
	for _, s := range models.BackofficeStates() {
		declared[s] = true
	}

	for k, next := range machine.table {
		assert.True(t, declared[k.state], "undeclared source state %q", k.state)
		assert.True(t, declared[next], "undeclared target state %q", next)
	}
}

// Concurrent transitions on distinct meldingen must be safe; the table is
// immutable after New.
func TestMachine_ConcurrentDistinctMeldingen(t *testing.T) {
	machine := New()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			m := &models.Melding{State: models.StateNew}
			assert.NoError(t, machine.Transition(m, models.TransitionClassify))
			assert.NoError(t, machine.Transition(m, models.TransitionSubmitLocation))
			assert.NoError(t, machine.Transition(m, models.TransitionSubmit))
			assert.Equal(t, models.StateSubmitted, m.State)
		}()
	}
	wg.Wait()
}

func TestMachine_FullLifecycle(t *testing.T) {
	machine := New()

	testutil.Given(t, "a freshly created melding", func(t *testing.T) {
		m := &models.Melding{State: models.StateNew}

		testutil.When(t, "the melder walks the whole form", func(t *testing.T) {
			require.NoError(t, machine.Transition(m, models.TransitionClassify))
			require.NoError(t, machine.Transition(m, models.TransitionAnswerQuestions))
			require.NoError(t, machine.Transition(m, models.TransitionAddAttachments))
			require.NoError(t, machine.Transition(m, models.TransitionSubmitLocation))
			require.NoError(t, machine.Transition(m, models.TransitionAddContactInfo))
			require.NoError(t, machine.Transition(m, models.TransitionSubmit))

			testutil.Then(t, "the melding is submitted", func(t *testing.T) {
				assert.Equal(t, models.StateSubmitted, m.State)
			})
		})

		testutil.When(t, "an operator handles and completes it", func(t *testing.T) {
			require.NoError(t, machine.Transition(m, models.TransitionProcess))
			require.NoError(t, machine.Transition(m, models.TransitionPlan))
			require.NoError(t, machine.Transition(m, models.TransitionComplete))

			testutil.Then(t, "the melding is completed and form steps are gone", func(t *testing.T) {
				assert.Equal(t, models.StateCompleted, m.State)
				err := machine.Transition(m, models.TransitionAnswerQuestions)
				assert.True(t, errors.Is(err, sentinel.ErrInvalidTransition))
			})
		})
	})
}
