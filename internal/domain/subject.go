package domain

import "fmt"

type UserID int64

type subjectKind uint8

const (
	subjectNone subjectKind = iota
	subjectUser
	subjectSystem
)

// Subject identifies whose state a polling session tracks: a single user or
// the system-wide admin view. The zero value means no subject is selected.
type Subject struct {
	kind subjectKind
	user UserID
}

func UserSubject(id UserID) Subject {
	if id <= 0 {
		return Subject{}
	}

	return Subject{kind: subjectUser, user: id}
}

func SystemSubject() Subject {
	return Subject{kind: subjectSystem}
}

func (s Subject) IsZero() bool {
	return s.kind == subjectNone
}

func (s Subject) IsSystem() bool {
	return s.kind == subjectSystem
}

func (s Subject) UserID() (UserID, bool) {
	if s.kind != subjectUser {
		return 0, false
	}

	return s.user, true
}

func (s Subject) String() string {
	switch s.kind {
	case subjectUser:
		return fmt.Sprintf("user:%d", s.user)
	case subjectSystem:
		return "system"
	default:
		return "none"
	}
}

// Label is the human-readable name used in notifications.
func (s Subject) Label() string {
	switch s.kind {
	case subjectUser:
		return fmt.Sprintf("User #%d", s.user)
	case subjectSystem:
		return "System"
	default:
		return ""
	}
}
