package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"kaban_bot/internal/model"
	"kaban_bot/internal/repository"
)

type UserService struct {
	repo  UserRepository
	votes VoteRepository
}

func NewUserService(repo UserRepository, votes VoteRepository) *UserService {
	return &UserService{
		repo:  repo,
		votes: votes,
	}
}

// Register stores the sender as a registered user with the current chat as destination.
func (s *UserService) Register(ctx context.Context, sender model.Sender) (*model.User, error) {
	user, err := s.repo.UpsertUser(ctx, &model.User{
		TelegramID: sender.TelegramID,
		Handle:     sender.Handle,
		ChatID:     sender.ChatID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Refresh updates the stored handle, and the destination chat when the sender
// writes from a private chat. It is a no-op when nothing changed.
func (s *UserService) Refresh(ctx context.Context, user *model.User, sender model.Sender) (*model.User, error) {
	update := &model.User{TelegramID: user.TelegramID}
	changed := false

	if sender.Handle != "" && sender.Handle != user.Handle {
		update.Handle = sender.Handle
		changed = true
	}
	if sender.Private && sender.ChatID != 0 && sender.ChatID != user.ChatID {
		update.ChatID = sender.ChatID
		changed = true
	}
	if !changed {
		return user, nil
	}

	refreshed, err := s.repo.UpsertUser(ctx, update)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh user: %w", err)
	}
	return refreshed, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by telegram ID: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUserStats(ctx context.Context, telegramID int64) (*model.UserStats, error) {
	user, err := s.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	total, positive, err := s.votes.CountUserVotes(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user votes: %w", err)
	}

	return &model.UserStats{
		User:              user,
		TotalVotes:        total,
		PositiveVotes:     positive,
		NegativeVotes:     total - positive,
		ParticipationRate: participationRate(total, positive),
	}, nil
}

// participationRate is positive/total as a percentage rounded to two decimals.
func participationRate(total, positive int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(positive) / float64(total) * 100
	return math.Round(rate*100) / 100
}
