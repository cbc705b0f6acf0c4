package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/docstore"
	"resume-builder/internal/sections"
	"resume-builder/internal/shared/telemetry"
)

// Choices offered while an exit awaits confirmation.
const (
	ChoiceSaveAndLeave = "save_and_leave"
	ChoiceStay         = "stay"
)

// StepController is the part of the section controller a session drives.
type StepController interface {
	Preload(ctx context.Context, t sections.Target) (sections.Form, error)
	Submit(ctx context.Context, t sections.Target, input map[string]any) (sections.Result, error)
}

type stepState struct {
	step   sections.Step
	guard  *Guard
	stored bool
}

// Session is the ephemeral state of one user working through one resume.
type Session struct {
	ID         string
	OwnerID    string
	TemplateID string
	ResumeID   string
	Name       string

	mu          sync.Mutex
	current     string
	steps       map[string]*stepState
	pendingExit string
	// leaving is set while a save-and-leave write runs without the lock held.
	leaving  bool
	lastSeen time.Time
	log      telemetry.Logger
}

// StepView is the client's view of one step.
type StepView struct {
	Section     string               `json:"section"`
	Slug        string               `json:"slug"`
	Title       string               `json:"title"`
	State       GuardState           `json:"state"`
	Data        docstore.SectionData `json:"data"`
	Stored      bool                 `json:"stored"`
	Path        string               `json:"path"`
	PendingExit string               `json:"pendingExit,omitempty"`
}

// View is the client's view of a session.
type View struct {
	ID         string   `json:"sessionId"`
	TemplateID string   `json:"templateId"`
	ResumeID   string   `json:"resumeId"`
	Name       string   `json:"name"`
	Step       StepView `json:"step"`
}

// SubmitOutcome wraps a submit result with whether it still applied to the session.
type SubmitOutcome struct {
	sections.Result
	State GuardState `json:"state"`
	// Stale is true when the session moved to another step while the write was in flight.
	Stale bool `json:"stale"`
}

// NavigateOutcome answers an exit attempt.
type NavigateOutcome struct {
	Allowed bool     `json:"allowed"`
	To      string   `json:"to,omitempty"`
	Choices []string `json:"choices,omitempty"`
	Step    StepView `json:"step"`
}

// Manager is the in-memory registry of wizard sessions.
type Manager struct {
	ctrl StepController
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a registry; sessions idle longer than ttl are dropped.
func NewManager(ctrl StepController, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		ctrl:     ctrl,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open starts a session on detail, preloading that step.
func (m *Manager) Open(ctx context.Context, ownerID, templateID, resumeID, name, detail string) (View, error) {
	if strings.TrimSpace(ownerID) == "" {
		return View{}, docstore.ErrUnauthenticated
	}
	if detail == "" {
		detail = sections.Steps()[0].Slug
	}
	if _, err := sections.NewTarget(ownerID, templateID, resumeID, name, detail); err != nil {
		return View{}, err
	}
	s := &Session{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		TemplateID: templateID,
		ResumeID:   resumeID,
		Name:       name,
		steps:      make(map[string]*stepState),
		lastSeen:   m.now(),
	}
	s.log = telemetry.With(map[string]any{"session_id": s.ID, "resume_id": resumeID, "user_id": ownerID})
	// Not yet registered, so no other goroutine can reach s.
	if err := m.enter(ctx, s, detail); err != nil {
		return View{}, err
	}
	view := s.view()

	m.Sweep()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	s.log.Info("wizard.session_opened", map[string]any{"step": detail})
	return view, nil
}

// Get returns the session's current view.
func (m *Manager) Get(ownerID, sessionID string) (View, error) {
	s, err := m.lookup(ownerID, sessionID)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Edit replaces the draft of detail and moves the session to it.
func (m *Manager) Edit(ctx context.Context, ownerID, sessionID, detail string, values map[string]any) (StepView, error) {
	s, err := m.lookup(ownerID, sessionID)
	if err != nil {
		return StepView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := m.switchTo(ctx, s, detail)
	if err != nil {
		return StepView{}, err
	}
	if err := st.guard.Edit(st.step.Normalize(values)); err != nil {
		return StepView{}, err
	}
	return s.stepView(st), nil
}

// Submit persists the draft of detail. The session lock is released during the
// write; if the session moved on meanwhile the result is reported as stale and
// the session state is left alone.
func (m *Manager) Submit(ctx context.Context, ownerID, sessionID, detail string) (SubmitOutcome, error) {
	s, err := m.lookup(ownerID, sessionID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	s.mu.Lock()
	st, err := m.switchTo(ctx, s, detail)
	if err != nil {
		s.mu.Unlock()
		return SubmitOutcome{}, err
	}
	if st.guard.State() == StateConfirmingExit {
		s.mu.Unlock()
		return SubmitOutcome{}, ErrConfirmationPending
	}
	target := s.target(st.step)
	draft := st.guard.Draft()
	s.mu.Unlock()

	res, err := m.ctrl.Submit(ctx, target, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != st.step.Key {
		s.log.Info("wizard.stale_submit", map[string]any{"section": st.step.Key, "current": s.current})
		if err != nil {
			return SubmitOutcome{}, err
		}
		return SubmitOutcome{Result: res, State: st.guard.State(), Stale: true}, nil
	}
	if err != nil {
		return SubmitOutcome{}, err
	}
	st.guard.Saved(res.Data)
	st.stored = true
	if next, ok := st.step.Next(); ok && st.guard.State() == StateClean {
		if err := m.enter(ctx, s, next.Slug); err != nil {
			return SubmitOutcome{}, err
		}
	}
	return SubmitOutcome{Result: res, State: st.guard.State()}, nil
}

// Navigate is an exit attempt from the current step toward to, which may be a
// step slug or any client route. A dirty step blocks with ErrExitBlocked.
func (m *Manager) Navigate(ctx context.Context, ownerID, sessionID, to string) (NavigateOutcome, error) {
	s, err := m.lookup(ownerID, sessionID)
	if err != nil {
		return NavigateOutcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.leaving {
		return NavigateOutcome{}, ErrConfirmationPending
	}
	st := s.steps[s.current]
	if !st.guard.AttemptExit() {
		s.pendingExit = to
		return NavigateOutcome{
			Allowed: false,
			To:      to,
			Choices: []string{ChoiceSaveAndLeave, ChoiceStay},
			Step:    s.stepView(st),
		}, ErrExitBlocked
	}
	return m.leave(ctx, s, to)
}

// Confirm resolves a blocked exit. Stay returns to editing; save-and-leave
// submits the draft and leaves only when the write succeeds. The session lock
// is released during the write; ConfirmingExit and the leaving flag keep the
// session on this step meanwhile.
func (m *Manager) Confirm(ctx context.Context, ownerID, sessionID, choice string) (NavigateOutcome, error) {
	s, err := m.lookup(ownerID, sessionID)
	if err != nil {
		return NavigateOutcome{}, err
	}
	s.mu.Lock()
	if s.leaving {
		s.mu.Unlock()
		return NavigateOutcome{}, ErrConfirmationPending
	}
	st := s.steps[s.current]

	switch choice {
	case ChoiceStay:
		defer s.mu.Unlock()
		if err := st.guard.Stay(); err != nil {
			return NavigateOutcome{}, err
		}
		s.pendingExit = ""
		return NavigateOutcome{Allowed: false, Step: s.stepView(st)}, nil
	case ChoiceSaveAndLeave:
		draft, err := st.guard.BeginSaveAndLeave()
		if err != nil {
			s.mu.Unlock()
			return NavigateOutcome{}, err
		}
		target := s.target(st.step)
		s.leaving = true
		s.mu.Unlock()

		res, err := m.ctrl.Submit(ctx, target, draft)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.leaving = false
		if err != nil {
			st.guard.SaveFailed()
			s.log.Warn("wizard.save_and_leave_failed", map[string]any{"section": st.step.Key, "error": err})
			return NavigateOutcome{}, err
		}
		st.guard.SavedAndLeft(res.Data)
		st.stored = true
		to := s.pendingExit
		s.pendingExit = ""
		return m.leave(ctx, s, to)
	default:
		s.mu.Unlock()
		return NavigateOutcome{}, ErrInvalidChoice
	}
}

// Close discards the session.
func (m *Manager) Close(ownerID, sessionID string) error {
	if _, err := m.lookup(ownerID, sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Sweep drops idle sessions. A session whose lock is held is in use and is skipped.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				telemetry.Info("wizard.sessions_expired", map[string]any{"count": n})
			}
		}
	}
}

func (m *Manager) lookup(ownerID, sessionID string) (*Session, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, docstore.ErrUnauthenticated
	}
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || s.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	now := m.now()
	s.mu.Lock()
	expired := now.Sub(s.lastSeen) > m.ttl
	if !expired {
		s.lastSeen = now
	}
	s.mu.Unlock()
	if expired {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// switchTo makes detail current, refusing while another step awaits exit confirmation.
func (m *Manager) switchTo(ctx context.Context, s *Session, detail string) (*stepState, error) {
	step, ok := sections.Lookup(detail)
	if !ok {
		return nil, sections.ErrUnknownStep
	}
	if step.Key != s.current {
		if cur := s.steps[s.current]; cur != nil && cur.guard.State() == StateConfirmingExit {
			return nil, ErrConfirmationPending
		}
		if err := m.enter(ctx, s, step.Slug); err != nil {
			return nil, err
		}
	}
	return s.steps[step.Key], nil
}

// enter makes detail current, preloading it the first time only.
func (m *Manager) enter(ctx context.Context, s *Session, detail string) error {
	step, ok := sections.Lookup(detail)
	if !ok {
		return sections.ErrUnknownStep
	}
	if _, ok := s.steps[step.Key]; !ok {
		form, err := m.ctrl.Preload(ctx, s.target(step))
		if err != nil {
			return err
		}
		s.steps[step.Key] = &stepState{step: step, guard: NewGuard(form.Data), stored: form.Stored}
	}
	s.current = step.Key
	return nil
}

func (m *Manager) leave(ctx context.Context, s *Session, to string) (NavigateOutcome, error) {
	if step, ok := sections.Lookup(to); ok {
		if err := m.enter(ctx, s, step.Slug); err != nil {
			return NavigateOutcome{}, err
		}
	}
	return NavigateOutcome{Allowed: true, To: to, Step: s.stepView(s.steps[s.current])}, nil
}

func (s *Session) target(step sections.Step) sections.Target {
	return sections.Target{
		OwnerID:    s.OwnerID,
		TemplateID: s.TemplateID,
		ResumeID:   s.ResumeID,
		Name:       s.Name,
		Step:       step,
	}
}

func (s *Session) view() View {
	return View{
		ID:         s.ID,
		TemplateID: s.TemplateID,
		ResumeID:   s.ResumeID,
		Name:       s.Name,
		Step:       s.stepView(s.steps[s.current]),
	}
}

func (s *Session) stepView(st *stepState) StepView {
	v := StepView{
		Section: st.step.Key,
		Slug:    st.step.Slug,
		Title:   st.step.Title,
		State:   st.guard.State(),
		Data:    st.guard.Draft(),
		Stored:  st.stored,
		Path:    sections.BuildPath(s.TemplateID, s.ResumeID, s.Name, st.step.Slug),
	}
	if st.guard.State() == StateConfirmingExit {
		v.PendingExit = s.pendingExit
	}
	return v
}
