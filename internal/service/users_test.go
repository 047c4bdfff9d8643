package service

import (
	"context"
	"errors"
	"testing"

	"kaban_bot/internal/model"
	"kaban_bot/internal/repository"
	"kaban_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	mockRepo := &mocks.MockUserRepository{}
	service := NewUserService(mockRepo, &mocks.MockVoteRepository{})

	stored := &model.User{TelegramID: 42, Handle: "alice", ChatID: 4242}
	mockRepo.On("UpsertUser", mock.Anything, &model.User{TelegramID: 42, Handle: "alice", ChatID: 4242}).
		Return(stored, nil)

	user, err := service.Register(context.Background(), model.Sender{TelegramID: 42, Handle: "alice", ChatID: 4242, Private: true})

	require.NoError(t, err)
	assert.Equal(t, stored, user)
	mockRepo.AssertExpectations(t)
}

func TestUserService_Refresh(t *testing.T) {
	current := &model.User{TelegramID: 42, Handle: "alice", ChatID: 4242}

	tests := []struct {
		name           string
		sender         model.Sender
		expectedUpdate *model.User
	}{
		{
			name:   "Nothing changed",
			sender: model.Sender{TelegramID: 42, Handle: "alice", ChatID: 4242, Private: true},
		},
		{
			name:   "Group message does not move the chat",
			sender: model.Sender{TelegramID: 42, Handle: "alice", ChatID: -100, Private: false},
		},
		{
			name:           "Handle changed in the group",
			sender:         model.Sender{TelegramID: 42, Handle: "alice_new", ChatID: -100, Private: false},
			expectedUpdate: &model.User{TelegramID: 42, Handle: "alice_new"},
		},
		{
			name:           "New private chat",
			sender:         model.Sender{TelegramID: 42, Handle: "alice", ChatID: 5000, Private: true},
			expectedUpdate: &model.User{TelegramID: 42, ChatID: 5000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockUserRepository{}
			service := NewUserService(mockRepo, &mocks.MockVoteRepository{})

			if tt.expectedUpdate != nil {
				mockRepo.On("UpsertUser", mock.Anything, tt.expectedUpdate).Return(&model.User{TelegramID: 42}, nil)
			}

			user, err := service.Refresh(context.Background(), current, tt.sender)

			require.NoError(t, err)
			assert.NotNil(t, user)
			if tt.expectedUpdate == nil {
				assert.Same(t, current, user)
				mockRepo.AssertNotCalled(t, "UpsertUser", mock.Anything, mock.Anything)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_GetUserStats(t *testing.T) {
	tests := []struct {
		name          string
		telegramID    int64
		setupMocks    func(users *mocks.MockUserRepository, votes *mocks.MockVoteRepository)
		expected      *model.UserStats
		expectedError error
	}{
		{
			name:       "User not found",
			telegramID: 1,
			setupMocks: func(users *mocks.MockUserRepository, votes *mocks.MockVoteRepository) {
				users.On("GetUserByTelegramID", mock.Anything, int64(1)).Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name:       "No votes yet",
			telegramID: 2,
			setupMocks: func(users *mocks.MockUserRepository, votes *mocks.MockVoteRepository) {
				users.On("GetUserByTelegramID", mock.Anything, int64(2)).Return(&model.User{TelegramID: 2}, nil)
				votes.On("CountUserVotes", mock.Anything, int64(2)).Return(0, 0, nil)
			},
			expected: &model.UserStats{User: &model.User{TelegramID: 2}},
		},
		{
			name:       "Rate is rounded to two decimals",
			telegramID: 3,
			setupMocks: func(users *mocks.MockUserRepository, votes *mocks.MockVoteRepository) {
				users.On("GetUserByTelegramID", mock.Anything, int64(3)).Return(&model.User{TelegramID: 3}, nil)
				votes.On("CountUserVotes", mock.Anything, int64(3)).Return(3, 2, nil)
			},
			expected: &model.UserStats{
				User:              &model.User{TelegramID: 3},
				TotalVotes:        3,
				PositiveVotes:     2,
				NegativeVotes:     1,
				ParticipationRate: 66.67,
			},
		},
		{
			name:       "Count failure",
			telegramID: 4,
			setupMocks: func(users *mocks.MockUserRepository, votes *mocks.MockVoteRepository) {
				users.On("GetUserByTelegramID", mock.Anything, int64(4)).Return(&model.User{TelegramID: 4}, nil)
				votes.On("CountUserVotes", mock.Anything, int64(4)).Return(0, 0, errors.New("connection reset"))
			},
			expectedError: errors.New("failed to count user votes: connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.MockUserRepository{}
			votes := &mocks.MockVoteRepository{}
			tt.setupMocks(users, votes)
			service := NewUserService(users, votes)

			stats, err := service.GetUserStats(context.Background(), tt.telegramID)

			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
				assert.Nil(t, stats)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, stats)
			}
			users.AssertExpectations(t)
			votes.AssertExpectations(t)
		})
	}
}

func TestFormatStats(t *testing.T) {
	low := FormatStats(&model.UserStats{TotalVotes: 3, PositiveVotes: 1, NegativeVotes: 2, ParticipationRate: 33.33}, "@bob")
	assert.Contains(t, low, "👤 Пользователь: @bob")
	assert.Contains(t, low, "📈 Процент участия: 33.33%")
	assert.Contains(t, low, "🙈 Слишком часто сливаешься!")

	high := FormatStats(&model.UserStats{TotalVotes: 2, PositiveVotes: 2, ParticipationRate: 100}, "@alice")
	assert.Contains(t, high, "📈 Процент участия: 100%")
	assert.Contains(t, high, "🎉 Отличная активность!")
}
