package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

var baseTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// fakeLedger is an in-memory ledger. A call whose key has a gate blocks until
// the gate is released, whatever its context says, so tests can deliver a
// response late.
type fakeLedger struct {
	mu sync.Mutex

	users    map[domain.UserID]domain.User
	balances map[domain.UserID]decimal.Decimal
	txs      []domain.Transaction
	nextUser domain.UserID
	nextTx   domain.TransactionID

	calls       map[string]int
	returned    map[string]int
	inFlight    map[string]int
	maxInFlight map[string]int
	gates       map[string]chan struct{}
	errs        map[string]error
	limits      []int
}

var (
	_ ports.LedgerReader = (*fakeLedger)(nil)
	_ ports.LedgerWriter = (*fakeLedger)(nil)
)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		users:       map[domain.UserID]domain.User{},
		balances:    map[domain.UserID]decimal.Decimal{},
		calls:       map[string]int{},
		returned:    map[string]int{},
		inFlight:    map[string]int{},
		maxInFlight: map[string]int{},
		gates:       map[string]chan struct{}{},
		errs:        map[string]error{},
	}
}

func (l *fakeLedger) addUser(name string, balance int64) domain.User {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextUser++
	user := domain.User{ID: l.nextUser, Name: name, CreatedAt: baseTime}
	l.users[user.ID] = user
	l.balances[user.ID] = decimal.NewFromInt(balance)
	return user
}

func (l *fakeLedger) addTransaction(tx domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.txs = append(l.txs, tx)
	if tx.ID > l.nextTx {
		l.nextTx = tx.ID
	}
}

// hold makes calls to key block until the returned release func runs.
func (l *fakeLedger) hold(key string) func() {
	gate := make(chan struct{})

	l.mu.Lock()
	l.gates[key] = gate
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.gates, key)
			l.mu.Unlock()
			close(gate)
		})
	}
}

func (l *fakeLedger) failWith(key string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err == nil {
		delete(l.errs, key)
		return
	}
	l.errs[key] = err
}

func (l *fakeLedger) callCount(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[key]
}

func (l *fakeLedger) returnedCount(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.returned[key]
}

func (l *fakeLedger) peakInFlight(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxInFlight[key]
}

func (l *fakeLedger) enter(key string) error {
	l.mu.Lock()
	l.calls[key]++
	l.inFlight[key]++
	if l.inFlight[key] > l.maxInFlight[key] {
		l.maxInFlight[key] = l.inFlight[key]
	}
	gate := l.gates[key]
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errs[key]
}

func (l *fakeLedger) leave(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight[key]--
	l.returned[key]++
}

func (l *fakeLedger) Balance(_ context.Context, id domain.UserID) (domain.Balance, error) {
	key := fmt.Sprintf("balance/%d", id)
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.Balance{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.users[id]; !ok {
		return domain.Balance{}, &domain.RejectedError{Reason: domain.ErrNotFound, Message: "User not found", Status: 404}
	}
	return domain.Balance{UserID: id, Amount: l.balances[id], Currency: domain.DefaultCurrency}, nil
}

func (l *fakeLedger) Transactions(_ context.Context, id domain.UserID) ([]domain.Transaction, error) {
	key := fmt.Sprintf("transactions/%d", id)
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range l.txs {
		if (tx.From != nil && *tx.From == id) || (tx.To != nil && *tx.To == id) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (l *fakeLedger) SystemSummary(context.Context) (domain.SystemSummary, error) {
	key := "summary"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.SystemSummary{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	summary := domain.SystemSummary{TotalUsers: int64(len(l.users)), Currency: domain.DefaultCurrency}
	for _, balance := range l.balances {
		summary.TotalValue = summary.TotalValue.Add(balance)
	}
	for _, tx := range l.txs {
		switch tx.Type {
		case domain.TransactionTransfer:
			summary.TotalTransfers++
		case domain.TransactionWithdraw:
			summary.TotalWithdrawals++
		}
	}
	return summary, nil
}

func (l *fakeLedger) RecentActivity(_ context.Context, limit int) ([]domain.Transaction, error) {
	key := "activity"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits = append(l.limits, limit)
	out := domain.NormalizeTransactions(l.txs)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *fakeLedger) CreateAccount(_ context.Context, params domain.CreateUser) (domain.User, error) {
	key := "create"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.User{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextUser++
	user := domain.User{ID: l.nextUser, Name: params.Name, Email: params.Email, CreatedAt: baseTime}
	l.users[user.ID] = user
	l.balances[user.ID] = decimal.Zero
	return user, nil
}

func (l *fakeLedger) Deposit(_ context.Context, params domain.Deposit) (domain.Transaction, error) {
	key := "deposit"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[params.UserID] = l.balances[params.UserID].Add(params.Amount)
	return l.recordLocked(domain.TransactionDeposit, params.Amount, nil, &params.UserID, params.Description), nil
}

func (l *fakeLedger) Transfer(_ context.Context, params domain.Transfer) (domain.Transaction, error) {
	key := "transfer"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[params.From].LessThan(params.Amount) {
		return domain.Transaction{}, &domain.RejectedError{Reason: domain.ErrInsufficientFunds, Message: "Insufficient funds", Status: 400}
	}
	l.balances[params.From] = l.balances[params.From].Sub(params.Amount)
	l.balances[params.To] = l.balances[params.To].Add(params.Amount)
	return l.recordLocked(domain.TransactionTransfer, params.Amount, &params.From, &params.To, params.Description), nil
}

func (l *fakeLedger) Withdraw(_ context.Context, params domain.Withdraw) (domain.Transaction, error) {
	key := "withdraw"
	defer l.leave(key)
	if err := l.enter(key); err != nil {
		return domain.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[params.UserID].LessThan(params.Amount) {
		return domain.Transaction{}, &domain.RejectedError{Reason: domain.ErrInsufficientFunds, Message: "Insufficient funds", Status: 400}
	}
	l.balances[params.UserID] = l.balances[params.UserID].Sub(params.Amount)
	return l.recordLocked(domain.TransactionWithdraw, params.Amount, &params.UserID, nil, params.Description), nil
}

func (l *fakeLedger) recordLocked(kind domain.TransactionType, amount decimal.Decimal, from, to *domain.UserID, description string) domain.Transaction {
	l.nextTx++
	tx := domain.Transaction{
		ID:          l.nextTx,
		Type:        kind,
		Status:      domain.StatusCompleted,
		Amount:      amount,
		From:        copyID(from),
		To:          copyID(to),
		Description: description,
		CreatedAt:   baseTime.Add(time.Duration(l.nextTx) * time.Minute),
	}
	l.txs = append(l.txs, tx)
	return tx
}

func copyID(id *domain.UserID) *domain.UserID {
	if id == nil {
		return nil
	}
	value := *id
	return &value
}

type recordingMetrics struct {
	mu        sync.Mutex
	fetches   map[string]int
	coalesced map[string]int
	abandoned map[string]int
	actions   map[string]int
}

var _ ports.Metrics = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		fetches:   map[string]int{},
		coalesced: map[string]int{},
		abandoned: map[string]int{},
		actions:   map[string]int{},
	}
}

func (m *recordingMetrics) ObserveFetch(stream string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[stream]++
}

func (m *recordingMetrics) IncCoalesced(stream string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coalesced[stream]++
}

func (m *recordingMetrics) IncAbandoned(stream string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abandoned[stream]++
}

func (m *recordingMetrics) ObserveAction(kind string, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions[kind+"/"+outcome]++
}

func (m *recordingMetrics) count(counter map[string]int, key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return counter[key]
}

type countingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRefresher) RefreshNow() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func mockAnyContext() interface{} {
	return mock.Anything
}
