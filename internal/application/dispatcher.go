package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

// Refresher is the part of PollingSession the dispatcher needs after a
// successful mutation.
type Refresher interface {
	RefreshNow()
}

// Outcome is what a settled action produced. CreateUser fills User, the
// money movements fill Transaction.
type Outcome struct {
	Request     domain.ActionRequest
	User        *domain.User
	Transaction *domain.Transaction
}

// ActionDispatcher submits one mutating action at a time. A submission made
// while another is in flight fails with domain.ErrBusy and never reaches the
// ledger.
type ActionDispatcher struct {
	writer    ports.LedgerWriter
	toasts    *NotificationQueue
	overlay   *OverlayScheduler
	refresher Refresher
	clock     ports.Clock
	logger    zerolog.Logger
	metrics   ports.Metrics

	labeler   func(domain.ActionRequest, Outcome) string
	onSuccess func(context.Context, Outcome)

	busy atomic.Bool

	mu        sync.Mutex
	lastError string

	listeners listeners
}

func NewActionDispatcher(writer ports.LedgerWriter, toasts *NotificationQueue, overlay *OverlayScheduler, refresher Refresher, clock ports.Clock, opts ...Option) *ActionDispatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	o := applyOptions("action_dispatcher", opts)

	return &ActionDispatcher{
		writer:    writer,
		toasts:    toasts,
		overlay:   overlay,
		refresher: refresher,
		clock:     clock,
		logger:    o.logger,
		metrics:   o.metrics,
		labeler:   defaultOverlayLabel,
	}
}

// SetLabeler replaces the function naming the subject on the success overlay.
func (d *ActionDispatcher) SetLabeler(fn func(domain.ActionRequest, Outcome) string) {
	if fn == nil {
		fn = defaultOverlayLabel
	}
	d.labeler = fn
}

// OnSuccess registers a callback run after a successful action, before the
// refresh is requested.
func (d *ActionDispatcher) OnSuccess(fn func(context.Context, Outcome)) {
	d.onSuccess = fn
}

func (d *ActionDispatcher) Submit(ctx context.Context, action domain.Action) (Outcome, error) {
	if !d.busy.CompareAndSwap(false, true) {
		d.logger.Debug().Str("kind", string(kindOf(action))).Msg("rejected submission while busy")
		d.metrics.ObserveAction(string(kindOf(action)), "busy", 0)
		return Outcome{}, domain.ErrBusy
	}
	d.listeners.notify()
	defer func() {
		d.busy.Store(false)
		d.listeners.notify()
	}()

	prepared, err := PrepareAction(action)
	if err != nil {
		d.logger.Debug().Err(err).Str("kind", string(kindOf(action))).Msg("action failed validation")
		d.metrics.ObserveAction(string(kindOf(action)), "invalid", 0)
		d.setError(domain.UserMessage(err, failureMessage(kindOf(action))))
		return Outcome{}, err
	}

	request := domain.ActionRequest{
		ID:          uuid.NewString(),
		Action:      prepared,
		SubmittedAt: d.clock.Now(),
	}
	d.setError("")

	started := time.Now()
	outcome, err := d.call(ports.WithRequestID(ctx, request.ID), request)
	elapsed := time.Since(started)
	if err != nil {
		d.metrics.ObserveAction(string(request.Kind()), outcomeLabel(err), elapsed)
		d.logger.Warn().Err(err).Str("kind", string(request.Kind())).Str("request_id", request.ID).Msg("action failed")
		d.setError(domain.UserMessage(err, failureMessage(request.Kind())))
		return Outcome{Request: request}, err
	}

	d.metrics.ObserveAction(string(request.Kind()), "success", elapsed)
	d.logger.Info().Str("kind", string(request.Kind())).Str("request_id", request.ID).Msg("action completed")

	category := domain.CategoryFor(request.Kind())
	if d.toasts != nil {
		d.toasts.Push(successMessage(outcome), category)
	}
	if d.overlay != nil {
		d.overlay.Show(d.labeler(request, outcome), category)
	}
	if d.onSuccess != nil {
		d.onSuccess(ctx, outcome)
	}
	if d.refresher != nil {
		d.refresher.RefreshNow()
	}

	return outcome, nil
}

func (d *ActionDispatcher) call(ctx context.Context, request domain.ActionRequest) (Outcome, error) {
	outcome := Outcome{Request: request}

	switch action := request.Action.(type) {
	case domain.CreateUser:
		user, err := d.writer.CreateAccount(ctx, action)
		if err != nil {
			return outcome, fmt.Errorf("create account: %w", err)
		}
		outcome.User = &user
	case domain.Deposit:
		tx, err := d.writer.Deposit(ctx, action)
		if err != nil {
			return outcome, fmt.Errorf("deposit: %w", err)
		}
		outcome.Transaction = &tx
	case domain.Transfer:
		tx, err := d.writer.Transfer(ctx, action)
		if err != nil {
			return outcome, fmt.Errorf("transfer: %w", err)
		}
		outcome.Transaction = &tx
	case domain.Withdraw:
		tx, err := d.writer.Withdraw(ctx, action)
		if err != nil {
			return outcome, fmt.Errorf("withdraw: %w", err)
		}
		outcome.Transaction = &tx
	default:
		return outcome, fmt.Errorf("unsupported action %T", request.Action)
	}

	return outcome, nil
}

func (d *ActionDispatcher) IsBusy() bool {
	return d.busy.Load()
}

// LastError is the message of the most recent failed submission, cleared
// when the next submission reaches the ledger.
func (d *ActionDispatcher) LastError() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.lastError
}

func (d *ActionDispatcher) ClearError() {
	d.setError("")
}

func (d *ActionDispatcher) Subscribe(fn func()) func() {
	return d.listeners.add(fn)
}

func (d *ActionDispatcher) setError(message string) {
	d.mu.Lock()
	changed := d.lastError != message
	d.lastError = message
	d.mu.Unlock()

	if changed {
		d.listeners.notify()
	}
}

func kindOf(action domain.Action) domain.ActionKind {
	if action == nil {
		return ""
	}
	return action.Kind()
}

func outcomeLabel(err error) string {
	var rejectedErr *domain.RejectedError
	if errors.As(err, &rejectedErr) {
		return "rejected"
	}
	return "unavailable"
}

func failureMessage(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionCreateUser:
		return "Failed to create user"
	case domain.ActionDeposit:
		return "Deposit failed"
	case domain.ActionTransfer:
		return "Transfer failed"
	case domain.ActionWithdraw:
		return "Withdrawal failed"
	default:
		return "Action failed"
	}
}

func successMessage(outcome Outcome) string {
	switch action := outcome.Request.Action.(type) {
	case domain.CreateUser:
		if outcome.User != nil {
			return fmt.Sprintf("Created %s", outcome.User.Label())
		}
		return fmt.Sprintf("Created %s", action.Name)
	case domain.Deposit:
		return fmt.Sprintf("Deposited %s to %s", action.Amount.StringFixed(2), domain.UserSubject(action.UserID).Label())
	case domain.Transfer:
		return fmt.Sprintf("Transferred %s from %s to %s", action.Amount.StringFixed(2), domain.UserSubject(action.From).Label(), domain.UserSubject(action.To).Label())
	case domain.Withdraw:
		return fmt.Sprintf("Withdrew %s from %s", action.Amount.StringFixed(2), domain.UserSubject(action.UserID).Label())
	default:
		return fmt.Sprintf("%s completed", outcome.Request.Kind().Title())
	}
}

func defaultOverlayLabel(request domain.ActionRequest, outcome Outcome) string {
	if outcome.User != nil {
		return outcome.User.Label()
	}
	return request.Origin().Label()
}
