package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/OP3690/wordyfy-sub000/internal/quiz"
)

// StatsRecorder persists aggregate results when a session completes.
type StatsRecorder interface {
	RecordQuiz(ctx context.Context, userID string, score, totalQuestions int) error
}

// Config holds the fixed durations for both game modes.
type Config struct {
	ClassicQuestionSeconds    time.Duration
	ContinuousQuestionSeconds time.Duration
	ResultDisplayDelay        time.Duration
}

// DefaultConfig returns production defaults: 10s classic questions, 15s
// continuous questions, 1.5s result display before auto-advance.
func DefaultConfig() Config {
	return Config{
		ClassicQuestionSeconds:    10 * time.Second,
		ContinuousQuestionSeconds: 15 * time.Second,
		ResultDisplayDelay:        1500 * time.Millisecond,
	}
}

// Kind labels a server-side notification pushed to the transport.
type Kind string

const (
	KindQuestion  Kind = "question"
	KindTick      Kind = "tick"
	KindResult    Kind = "result"
	KindCompleted Kind = "completed"
)

// Notification carries a state snapshot to the transport layer.
type Notification struct {
	Kind  Kind
	State State
}

// Notifier receives session notifications. Implementations must not block.
type Notifier func(Notification)

// Session drives one quiz run. It owns at most one live timer handle at a
// time: every transition that invalidates the current question cancels the
// outstanding handle before arming a new one, and callbacks carry an epoch
// so a stale fire against a superseded state is a no-op.
type Session struct {
	ID     uuid.UUID
	UserID string
	Mode   string

	mu          sync.Mutex
	rules       Rules
	state       State
	resultDelay time.Duration

	timer *time.Timer
	epoch uint64

	notify Notifier
	stats  StatsRecorder
	onDone func()
	logger zerolog.Logger
}

func newSession(userID, mode string, questions []quiz.Question, cfg Config, notify Notifier, stats StatsRecorder, logger zerolog.Logger) *Session {
	questionDur := cfg.ClassicQuestionSeconds
	if mode == ModeContinuous {
		questionDur = cfg.ContinuousQuestionSeconds
	}
	s := &Session{
		ID:          uuid.New(),
		UserID:      userID,
		Mode:        mode,
		rules:       Rules{QuestionSeconds: int(questionDur / time.Second)},
		resultDelay: cfg.ResultDisplayDelay,
		notify:      notify,
		stats:       stats,
		logger:      logger.With().Str("component", "session").Logger(),
	}
	return s
}

func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(KindQuestion)
	s.armTick()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Select records the picked option; it may be changed until submission.
func (s *Session) Select(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.rules.Transition(s.state, SelectAnswer{Answer: answer})
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Submit evaluates the selection. On success the question timer is dead
// before the result is visible, so a concurrent expiry cannot double-fire.
func (s *Session) Submit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.rules.Transition(s.state, Submit{})
	if err != nil {
		return err
	}
	s.cancelTimer()
	s.state = next
	s.emit(KindResult)
	return nil
}

// Next advances past the result screen, completing the session on the last
// question. Also cancels a pending expiry auto-advance.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.rules.Transition(s.state, Next{})
	if err != nil {
		return err
	}
	s.cancelTimer()
	s.state = next
	if s.state.Phase == PhaseCompleted {
		s.finish()
		return nil
	}
	s.emit(KindQuestion)
	s.armTick()
	return nil
}

// End force-completes the session with partial credit. Any in-flight fetch
// is abandoned, not cancelled; only local timers are stopped.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.rules.Transition(s.state, End{})
	if err != nil {
		return err
	}
	s.cancelTimer()
	s.state = next
	s.finish()
	return nil
}

// cancelTimer stops the live handle and invalidates outstanding callbacks.
// Callers must hold s.mu.
func (s *Session) cancelTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.epoch++
}

// armTick schedules the next one-second countdown step. Callers must hold
// s.mu and have cancelled any previous handle.
func (s *Session) armTick() {
	s.epoch++
	epoch := s.epoch
	s.timer = time.AfterFunc(time.Second, func() { s.onTick(epoch) })
}

func (s *Session) onTick(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.state.Phase != PhaseAwaitingAnswer {
		return
	}
	next, err := s.rules.Transition(s.state, Tick{})
	if err != nil {
		return
	}
	s.state = next
	if s.state.Phase == PhaseAwaitingAnswer {
		s.emit(KindTick)
		s.armTick()
		return
	}
	// Countdown hit zero: implicit incorrect submission, then auto-advance
	// after the fixed display delay, exactly as if Next were pressed.
	s.emit(KindResult)
	s.armAutoAdvance()
}

func (s *Session) armAutoAdvance() {
	s.epoch++
	epoch := s.epoch
	s.timer = time.AfterFunc(s.resultDelay, func() { s.onAutoAdvance(epoch) })
}

func (s *Session) onAutoAdvance(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.state.Phase != PhaseShowingResult {
		return
	}
	next, err := s.rules.Transition(s.state, Next{})
	if err != nil {
		return
	}
	s.state = next
	if s.state.Phase == PhaseCompleted {
		s.finish()
		return
	}
	s.emit(KindQuestion)
	s.armTick()
}

// finish emits completion, unregisters the session and persists aggregate
// stats. Callers must hold s.mu; persistence runs outside the lock.
func (s *Session) finish() {
	s.emit(KindCompleted)
	if s.onDone != nil {
		s.onDone()
	}
	if s.stats == nil {
		return
	}
	score, total := s.state.Score, len(s.state.Questions)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.stats.RecordQuiz(ctx, s.UserID, score, total); err != nil {
			s.logger.Warn().Err(err).Str("user_id", s.UserID).Msg("failed to persist quiz stats")
		}
	}()
}

func (s *Session) emit(kind Kind) {
	if s.notify != nil {
		s.notify(Notification{Kind: kind, State: s.state})
	}
}

// Manager tracks live sessions by ID.
type Manager struct {
	cfg    Config
	stats  StatsRecorder
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewManager(cfg Config, stats StatsRecorder, logger zerolog.Logger) *Manager {
	return &Manager{
		cfg:      cfg,
		stats:    stats,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create registers a session over the given questions without arming its
// first timer, so the transport can acknowledge before notifications flow.
func (m *Manager) Create(userID, mode string, questions []quiz.Question, notify Notifier) *Session {
	s := newSession(userID, mode, questions, m.cfg, notify, m.stats, m.logger)
	s.state = s.rules.New(questions)
	s.onDone = func() { m.evict(s.ID) }

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Start creates a session and arms the first question timer.
func (m *Manager) Start(userID, mode string, questions []quiz.Question, notify Notifier) *Session {
	s := m.Create(userID, mode, questions, notify)
	s.start()
	return s
}

// Get retrieves a live session.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove drops a session from tracking, ending it first if still running.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok && s.Snapshot().Phase != PhaseCompleted {
		_ = s.End()
	}
}

// evict drops a finished session from tracking without touching its state.
// Runs from finish() under the session lock, so it must only take m.mu.
func (m *Manager) evict(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
