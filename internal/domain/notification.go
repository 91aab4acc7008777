package domain

import (
	"fmt"
	"time"
)

type NotificationID uint64

// Category tags a toast or overlay with the kind of action that produced it.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryDeposit  Category = "deposit"
	CategoryTransfer Category = "transfer"
	CategoryWithdraw Category = "withdraw"
)

func CategoryFor(kind ActionKind) Category {
	switch kind {
	case ActionCreateUser:
		return CategoryAccount
	case ActionDeposit:
		return CategoryDeposit
	case ActionTransfer:
		return CategoryTransfer
	case ActionWithdraw:
		return CategoryWithdraw
	default:
		return Category(kind)
	}
}

func (c Category) Title() string {
	switch c {
	case CategoryAccount:
		return ActionCreateUser.Title()
	case CategoryDeposit:
		return ActionDeposit.Title()
	case CategoryTransfer:
		return ActionTransfer.Title()
	case CategoryWithdraw:
		return ActionWithdraw.Title()
	default:
		return string(c)
	}
}

type Notification struct {
	ID        NotificationID
	Message   string
	Category  Category
	CreatedAt time.Time
	ExpiresAt time.Time
}

type OverlayMessage struct {
	SubjectLabel string
	Category     Category
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Text is the overlay headline naming the subject and the completed action.
func (m OverlayMessage) Text() string {
	if m.SubjectLabel == "" {
		return fmt.Sprintf("%s Successful!", m.Category.Title())
	}
	return fmt.Sprintf("%s — %s Successful!", m.SubjectLabel, m.Category.Title())
}
