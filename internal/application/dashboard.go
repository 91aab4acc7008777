package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

// DashboardConfig holds the timing knobs shared by both dashboards.
type DashboardConfig struct {
	Clock                ports.Clock
	PollInterval         time.Duration
	NotificationDuration time.Duration
	OverlayDuration      time.Duration
	FeedSize             int
}

type UserDashboardState struct {
	Users         []domain.User
	Selected      domain.Subject
	Session       SessionState
	Busy          bool
	ActionError   string
	Notifications []domain.Notification
	Overlay       *domain.OverlayMessage
}

// SelectedUser returns the known user record for the selected subject.
func (s UserDashboardState) SelectedUser() (domain.User, bool) {
	id, ok := s.Selected.UserID()
	if !ok {
		return domain.User{}, false
	}
	for _, user := range s.Users {
		if user.ID == id {
			return user, true
		}
	}
	return domain.User{}, false
}

// UserDashboard is the state behind the user view: a known-user list, one
// polling session for the selected user and the action pipeline with its
// toasts and overlay. Nothing in it is shared with another dashboard.
type UserDashboard struct {
	session    *PollingSession
	dispatcher *ActionDispatcher
	toasts     *NotificationQueue
	overlay    *OverlayScheduler
	directory  ports.UserDirectory
	logger     zerolog.Logger

	closed atomic.Bool
	mu     sync.Mutex
	users  []domain.User

	unsubscribe []func()
	listeners   listeners
}

func NewUserDashboard(fetcher StreamFetcher, writer ports.LedgerWriter, directory ports.UserDirectory, cfg DashboardConfig, opts ...Option) *UserDashboard {
	toasts := NewNotificationQueue(cfg.Clock, cfg.NotificationDuration)
	overlay := NewOverlayScheduler(cfg.Clock, cfg.OverlayDuration)
	session := NewPollingSession(fetcher, cfg.Clock, cfg.PollInterval, opts...)
	dispatcher := NewActionDispatcher(writer, toasts, overlay, session, cfg.Clock, opts...)

	d := &UserDashboard{
		session:    session,
		dispatcher: dispatcher,
		toasts:     toasts,
		overlay:    overlay,
		directory:  directory,
		logger:     applyOptions("user_dashboard", opts).logger,
	}
	dispatcher.SetLabeler(func(request domain.ActionRequest, outcome Outcome) string {
		if outcome.User != nil {
			return outcome.User.Label()
		}
		return d.labelFor(request.Origin())
	})
	dispatcher.OnSuccess(d.afterAction)

	for _, subscribe := range []func(func()) func(){session.Subscribe, dispatcher.Subscribe, toasts.Subscribe, overlay.Subscribe} {
		d.unsubscribe = append(d.unsubscribe, subscribe(d.listeners.notify))
	}

	return d
}

// Load seeds the known-user list from the directory.
func (d *UserDashboard) Load(ctx context.Context) error {
	if d.directory == nil {
		return nil
	}

	users, err := d.directory.List(ctx)
	if err != nil {
		return fmt.Errorf("list known users: %w", err)
	}

	d.mu.Lock()
	d.users = domain.NormalizeUsers(append(d.users, users...))
	d.mu.Unlock()

	d.listeners.notify()
	return nil
}

// Select makes id the polled subject. Selecting the current subject again
// only refreshes it.
func (d *UserDashboard) Select(ctx context.Context, id domain.UserID) error {
	subject := domain.UserSubject(id)
	if subject.IsZero() {
		return ErrNoSubject
	}

	state := d.session.State()
	if state.Active && state.Subject == subject {
		d.session.RefreshNow()
		return nil
	}

	d.dispatcher.ClearError()
	if err := d.session.Start(ctx, subject); err != nil {
		return fmt.Errorf("select %s: %w", subject, err)
	}
	return nil
}

func (d *UserDashboard) Deselect() {
	d.session.Reset()
}

// Submit runs action through the dispatcher. Money movements default to the
// selected user when they name none.
func (d *UserDashboard) Submit(ctx context.Context, action domain.Action) (Outcome, error) {
	if id, ok := d.session.State().Subject.UserID(); ok {
		switch a := action.(type) {
		case domain.Deposit:
			if a.UserID == 0 {
				a.UserID = id
			}
			action = a
		case domain.Transfer:
			if a.From == 0 {
				a.From = id
			}
			action = a
		case domain.Withdraw:
			if a.UserID == 0 {
				a.UserID = id
			}
			action = a
		}
	}

	return d.dispatcher.Submit(ctx, action)
}

func (d *UserDashboard) RefreshNow() {
	d.session.RefreshNow()
}

func (d *UserDashboard) DismissNotification(id domain.NotificationID) {
	d.toasts.Dismiss(id)
}

func (d *UserDashboard) ClearOverlay() {
	d.overlay.Clear()
}

func (d *UserDashboard) State() UserDashboardState {
	d.mu.Lock()
	users := make([]domain.User, len(d.users))
	copy(users, d.users)
	d.mu.Unlock()

	session := d.session.State()
	state := UserDashboardState{
		Users:         users,
		Selected:      session.Subject,
		Session:       session,
		Busy:          d.dispatcher.IsBusy(),
		ActionError:   d.dispatcher.LastError(),
		Notifications: d.toasts.Active(),
	}
	if overlay, ok := d.overlay.Current(); ok {
		state.Overlay = &overlay
	}
	return state
}

func (d *UserDashboard) Subscribe(fn func()) func() {
	return d.listeners.add(fn)
}

// Close stops polling and cancels every pending toast and overlay timer. An
// action still in flight settles quietly: it arms no timer and does not
// restart polling.
func (d *UserDashboard) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	for _, unsubscribe := range d.unsubscribe {
		unsubscribe()
	}
	d.session.Close()
	d.toasts.Close()
	d.overlay.Close()
}

// afterAction registers a newly created user and switches polling to it.
func (d *UserDashboard) afterAction(ctx context.Context, outcome Outcome) {
	if outcome.User == nil {
		return
	}
	user := *outcome.User

	d.mu.Lock()
	d.users = domain.NormalizeUsers(append(d.users, user))
	d.mu.Unlock()

	if d.directory != nil {
		if err := d.directory.Save(ctx, user); err != nil {
			d.logger.Warn().Err(err).Int64("user_id", int64(user.ID)).Msg("could not remember created user")
		}
	}

	if d.closed.Load() {
		return
	}
	if err := d.session.Start(ctx, user.Subject()); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			return
		}
		d.logger.Warn().Err(err).Int64("user_id", int64(user.ID)).Msg("could not select created user")
	}
}

func (d *UserDashboard) labelFor(subject domain.Subject) string {
	id, ok := subject.UserID()
	if !ok {
		return subject.Label()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, user := range d.users {
		if user.ID == id {
			return user.Label()
		}
	}
	return subject.Label()
}

// ProjectAdmin derives the admin view from a session state. It is pure: the
// same session always yields the same projections.
func ProjectAdmin(session SessionState, feedSize int) AdminDashboardState {
	if feedSize <= 0 {
		feedSize = domain.DefaultFeedSize
	}

	state := AdminDashboardState{Session: session}
	state.Summary, state.HasSummary = session.Snapshot.Summary()
	if session.Snapshot != nil {
		state.DailyTotals = domain.DailyTotals(session.Snapshot.Transactions)
		state.Recent = domain.RecentActivity(session.Snapshot.Transactions, feedSize)
	}
	return state
}

type AdminDashboardState struct {
	Session     SessionState
	Summary     domain.SystemSummary
	HasSummary  bool
	DailyTotals []domain.DailyTotal
	Recent      []domain.Transaction
}

// AdminDashboard polls the system subject and derives the trend and feed
// projections from whichever snapshot is current.
type AdminDashboard struct {
	session  *PollingSession
	feedSize int

	unsubscribe func()
	listeners   listeners
}

func NewAdminDashboard(fetcher StreamFetcher, cfg DashboardConfig, opts ...Option) *AdminDashboard {
	feedSize := cfg.FeedSize
	if feedSize <= 0 {
		feedSize = domain.DefaultFeedSize
	}

	d := &AdminDashboard{
		session:  NewPollingSession(fetcher, cfg.Clock, cfg.PollInterval, opts...),
		feedSize: feedSize,
	}
	d.unsubscribe = d.session.Subscribe(d.listeners.notify)
	return d
}

func (d *AdminDashboard) Start(ctx context.Context) error {
	return d.session.Start(ctx, domain.SystemSubject())
}

func (d *AdminDashboard) Stop() {
	d.session.Stop()
}

func (d *AdminDashboard) RefreshNow() {
	d.session.RefreshNow()
}

func (d *AdminDashboard) State() AdminDashboardState {
	return ProjectAdmin(d.session.State(), d.feedSize)
}

func (d *AdminDashboard) Subscribe(fn func()) func() {
	return d.listeners.add(fn)
}

func (d *AdminDashboard) Close() {
	d.unsubscribe()
	d.session.Close()
}
