package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"kaban_bot/internal/model"
	"kaban_bot/internal/repository"
)

type GateRequest struct {
	Sender  model.Sender
	Command model.Command
}

// AccessGate decides whether an inbound command may reach its handler.
type AccessGate struct {
	users    UserRepository
	password string
}

func NewAccessGate(users UserRepository, password string) *AccessGate {
	return &AccessGate{
		users:    users,
		password: password,
	}
}

// Check returns the registered user (nil for a registration attempt by a new
// sender) when the command may proceed, or one of the gate errors otherwise.
func (g *AccessGate) Check(ctx context.Context, req GateRequest) (*model.User, error) {
	if req.Sender.TelegramID == 0 {
		return nil, ErrUnknownSender
	}

	user, err := g.users.GetUserByTelegramID(ctx, req.Sender.TelegramID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up sender: %w", err)
		}
		user = nil
	}
	registered := user != nil

	if _, ok := req.Command.(model.CreateMeetingCommand); ok && registered {
		return user, nil
	}

	if !req.Sender.Private {
		return nil, ErrGroupChat
	}

	switch cmd := req.Command.(type) {
	case model.StartCommand:
		if err := g.checkPassword(cmd.Password); err != nil {
			return nil, err
		}
		return user, nil
	case model.CreateMeetingCommand:
		return nil, ErrNotRegistered
	}

	if !registered {
		return nil, ErrRegistrationRequired
	}
	return user, nil
}

// An unset password closes registration: nothing can match it.
func (g *AccessGate) checkPassword(given string) error {
	if given == "" {
		return ErrPasswordRequired
	}
	if g.password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(g.password)) != 1 {
		return ErrWrongPassword
	}
	return nil
}
