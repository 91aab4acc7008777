package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	ActionCreateUser ActionKind = "CREATE_USER"
	ActionDeposit    ActionKind = "DEPOSIT"
	ActionTransfer   ActionKind = "TRANSFER"
	ActionWithdraw   ActionKind = "WITHDRAW"
)

// Title is the verb shown in overlay messages.
func (k ActionKind) Title() string {
	switch k {
	case ActionCreateUser:
		return "Account Creation"
	case ActionDeposit:
		return "Deposit"
	case ActionTransfer:
		return "Transfer"
	case ActionWithdraw:
		return "Withdrawal"
	default:
		return string(k)
	}
}

// Action is one mutating call. The concrete variants are CreateUser, Deposit,
// Transfer and Withdraw; no other package can add one.
type Action interface {
	Kind() ActionKind
	isAction()
}

type CreateUser struct {
	Name  string `validate:"notblank"`
	Email string `validate:"omitempty,email"`
}

type Deposit struct {
	UserID      UserID          `validate:"gt=0"`
	Amount      decimal.Decimal `validate:"positive_amount"`
	Description string          `default:"User deposit"`
}

type Transfer struct {
	From        UserID          `validate:"gt=0"`
	To          UserID          `validate:"gt=0"`
	Amount      decimal.Decimal `validate:"positive_amount"`
	Description string          `default:"Internal transfer"`
}

type Withdraw struct {
	UserID      UserID          `validate:"gt=0"`
	Amount      decimal.Decimal `validate:"positive_amount"`
	Description string          `default:"User withdrawal"`
}

func (CreateUser) Kind() ActionKind { return ActionCreateUser }
func (Deposit) Kind() ActionKind    { return ActionDeposit }
func (Transfer) Kind() ActionKind   { return ActionTransfer }
func (Withdraw) Kind() ActionKind   { return ActionWithdraw }

func (CreateUser) isAction() {}
func (Deposit) isAction()    {}
func (Transfer) isAction()   {}
func (Withdraw) isAction()   {}

// ActionRequest describes a mutating call while it is in flight.
type ActionRequest struct {
	ID          string
	Action      Action
	SubmittedAt time.Time
}

func (r ActionRequest) Kind() ActionKind {
	if r.Action == nil {
		return ""
	}
	return r.Action.Kind()
}

// Origin is the subject an action is submitted on behalf of.
func (r ActionRequest) Origin() Subject {
	switch action := r.Action.(type) {
	case Deposit:
		return UserSubject(action.UserID)
	case Transfer:
		return UserSubject(action.From)
	case Withdraw:
		return UserSubject(action.UserID)
	default:
		return Subject{}
	}
}
