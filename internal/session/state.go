package session

import (
	"errors"
	"fmt"

	"github.com/OP3690/wordyfy-sub000/internal/quiz"
)

// Phase identifies where a session is within a question's lifecycle.
type Phase string

const (
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseShowingResult  Phase = "showing_result"
	PhaseCompleted      Phase = "completed"
)

// Game modes. The per-question timer duration is a fixed constant per mode.
const (
	ModeClassic    = "classic"
	ModeContinuous = "continuous"
)

// ErrInvalidTransition is returned when an event is not legal in the current
// phase.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrNoAnswerSelected is returned on Submit without a selection.
var ErrNoAnswerSelected = errors.New("no answer selected")

// State is the complete session snapshot. It is a value: transitions return
// a new State and never mutate the input, which keeps all session logic
// testable in isolation from timers and transport.
type State struct {
	Questions      []quiz.Question
	CurrentIndex   int
	Score          int
	SelectedAnswer string
	TimeLeft       int
	TimerRunning   bool
	Phase          Phase

	// LastAnswerCorrect reports the outcome shown during ShowingResult.
	LastAnswerCorrect bool
	// TimedOut marks that the current result came from timer expiry rather
	// than a submission.
	TimedOut bool
}

// Event is a session input: a user action or a timer signal.
type Event interface{ isSessionEvent() }

// SelectAnswer records (or changes) the picked option before submission.
type SelectAnswer struct{ Answer string }

// Submit evaluates the selected answer against the current question.
type Submit struct{}

// Tick decrements the countdown by one second; reaching zero applies the
// timer-expiry semantics.
type Tick struct{}

// TimerExpired is the implicit incorrect submission fired when the countdown
// reaches zero.
type TimerExpired struct{}

// Next advances to the following question, or completes on the last one.
type Next struct{}

// End force-completes the session, preserving the accumulated score.
type End struct{}

func (SelectAnswer) isSessionEvent() {}
func (Submit) isSessionEvent()       {}
func (Tick) isSessionEvent()         {}
func (TimerExpired) isSessionEvent() {}
func (Next) isSessionEvent()         {}
func (End) isSessionEvent()          {}

// Rules holds the per-mode constants transitions depend on.
type Rules struct {
	QuestionSeconds int
}

// New starts a session over the given questions: first question shown,
// timer armed at the full duration.
func (r Rules) New(questions []quiz.Question) State {
	return State{
		Questions:    questions,
		CurrentIndex: 0,
		Phase:        PhaseAwaitingAnswer,
		TimeLeft:     r.QuestionSeconds,
		TimerRunning: true,
	}
}

// Transition applies one event to a state and returns the successor state.
// Submission always stops the timer before evaluating correctness, so a
// manual submit and a timer expiry can never both score the same question.
func (r Rules) Transition(st State, ev Event) (State, error) {
	if st.Phase == PhaseCompleted {
		return st, fmt.Errorf("%w: session already completed", ErrInvalidTransition)
	}

	switch e := ev.(type) {
	case SelectAnswer:
		if st.Phase != PhaseAwaitingAnswer {
			return st, fmt.Errorf("%w: select outside awaiting_answer", ErrInvalidTransition)
		}
		st.SelectedAnswer = e.Answer
		return st, nil

	case Submit:
		if st.Phase != PhaseAwaitingAnswer {
			return st, fmt.Errorf("%w: submit outside awaiting_answer", ErrInvalidTransition)
		}
		if st.SelectedAnswer == "" {
			return st, ErrNoAnswerSelected
		}
		st.TimerRunning = false
		st.LastAnswerCorrect = st.SelectedAnswer == st.Questions[st.CurrentIndex].CorrectAnswer
		st.TimedOut = false
		if st.LastAnswerCorrect {
			st.Score++
		}
		st.Phase = PhaseShowingResult
		return st, nil

	case Tick:
		if st.Phase != PhaseAwaitingAnswer || !st.TimerRunning {
			return st, fmt.Errorf("%w: tick outside a running question", ErrInvalidTransition)
		}
		st.TimeLeft--
		if st.TimeLeft > 0 {
			return st, nil
		}
		return r.expire(st), nil

	case TimerExpired:
		if st.Phase != PhaseAwaitingAnswer {
			return st, fmt.Errorf("%w: expiry outside awaiting_answer", ErrInvalidTransition)
		}
		st.TimeLeft = 0
		return r.expire(st), nil

	case Next:
		if st.Phase != PhaseShowingResult {
			return st, fmt.Errorf("%w: next outside showing_result", ErrInvalidTransition)
		}
		if st.CurrentIndex == len(st.Questions)-1 {
			st.Phase = PhaseCompleted
			st.TimerRunning = false
			return st, nil
		}
		st.CurrentIndex++
		st.SelectedAnswer = ""
		st.LastAnswerCorrect = false
		st.TimedOut = false
		st.TimeLeft = r.QuestionSeconds
		st.TimerRunning = true
		st.Phase = PhaseAwaitingAnswer
		return st, nil

	case End:
		st.Phase = PhaseCompleted
		st.TimerRunning = false
		return st, nil

	default:
		return st, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}
}

// expire applies the implicit incorrect submission: no score change, result
// shown as timed out.
func (r Rules) expire(st State) State {
	st.TimerRunning = false
	st.LastAnswerCorrect = false
	st.TimedOut = true
	st.Phase = PhaseShowingResult
	return st
}
