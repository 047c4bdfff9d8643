package model

import "time"

const UnknownHandle = "unknown"

type User struct {
	TelegramID   int64
	Handle       string
	ChatID       int64
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// DisplayHandle returns the handle used in rosters and joke templates.
func (u *User) DisplayHandle() string {
	if u == nil || u.Handle == "" {
		return UnknownHandle
	}
	return u.Handle
}

type UserStats struct {
	User              *User
	TotalVotes        int
	PositiveVotes     int
	NegativeVotes     int
	ParticipationRate float64
}
