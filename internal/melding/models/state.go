package models

// State is a melding's lifecycle state. The set splits into two families:
// form states, reachable only through melder-token guarded transitions, and
// backoffice states, reachable only through operator actions. TransitionSubmit
// is the single bridge between the two.
type State string

const (
	// Form states.
	StateNew               State = "new"
	StateClassified        State = "classified"
	StateQuestionsAnswered State = "questions_answered"
	StateAttachmentsAdded  State = "attachments_added"
	StateLocationSubmitted State = "location_submitted"
	StateContactInfoAdded  State = "contact_info_added"

	// Backoffice states.
	StateSubmitted          State = "submitted"
	StateAwaitingProcessing State = "awaiting_processing"
	StateProcessing         State = "processing"
	StatePlanned            State = "planned"
	StateCompleted          State = "completed"
	StateCanceled           State = "canceled"
	StateReopenRequested    State = "reopen_requested"
	StateReopened           State = "reopened"
)

// Transition is a stable name for a state-machine validated mutation.
type Transition string

const (
	TransitionClassify        Transition = "classify"
	TransitionAnswerQuestions Transition = "answer_questions"
	TransitionAddAttachments  Transition = "add_attachments"
	TransitionSubmitLocation  Transition = "submit_location"
	TransitionAddContactInfo  Transition = "add_contact_info"
	TransitionSubmit          Transition = "submit"

	TransitionProcess         Transition = "process"
	TransitionAwaitProcessing Transition = "await_processing"
	TransitionPlan            Transition = "plan"
	TransitionComplete        Transition = "complete"
	TransitionCancel          Transition = "cancel"
	TransitionRequestReopen   Transition = "request_reopen"
	TransitionReopen          Transition = "reopen"
)

// FormStates lists every state reachable before submission, in form order.
func FormStates() []State {
	return []State{
		StateNew,
		StateClassified,
		StateQuestionsAnswered,
		StateAttachmentsAdded,
		StateLocationSubmitted,
		StateContactInfoAdded,
	}
}

// BackofficeStates lists every state reachable from submission onwards.
func BackofficeStates() []State {
	return []State{
		StateSubmitted,
		StateAwaitingProcessing,
		StateProcessing,
		StatePlanned,
		StateCompleted,
		StateCanceled,
		StateReopenRequested,
		StateReopened,
	}
}
