package domain

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	ID        UserID
	Name      string
	Email     string
	CreatedAt time.Time
}

func (u User) Subject() Subject {
	return UserSubject(u.ID)
}

// Label renders the user the way the selector lists it: "Alice (#3)".
func (u User) Label() string {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return UserSubject(u.ID).Label()
	}

	return fmt.Sprintf("%s (#%d)", name, u.ID)
}

// NormalizeUsers drops invalid ids and keeps the last record seen for each
// id, preserving first-seen order.
func NormalizeUsers(users []User) []User {
	result := make([]User, 0, len(users))
	index := make(map[UserID]int, len(users))
	for _, user := range users {
		if user.ID <= 0 {
			continue
		}
		if i, ok := index[user.ID]; ok {
			result[i] = user
			continue
		}
		index[user.ID] = len(result)
		result = append(result, user)
	}

	return result
}
