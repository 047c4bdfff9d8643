package service

import (
	"context"
	"errors"
	"testing"

	"kaban_bot/internal/model"
	"kaban_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotifier_BroadcastVote(t *testing.T) {
	users := &mocks.MockUserRepository{}
	messenger := &mocks.MockMessenger{}
	notifier := NewNotifier(users, messenger, testGroupChatID)

	blocked := errors.New("Forbidden: bot was blocked by the user")
	voteButtons := []model.Button{
		{Text: buttonParticipate, Data: "vote/yes_12"},
		{Text: buttonDecline, Data: "vote/no_12"},
	}

	users.On("ListUsers", mock.Anything).Return([]*model.User{
		{TelegramID: 1, ChatID: 101},
		{TelegramID: 2, ChatID: 0},
		{TelegramID: 3, ChatID: 303},
		{TelegramID: 4, ChatID: 404},
	}, nil)
	messenger.On("SendMessage", mock.Anything, int64(101), "ask", voteButtons).Return(nil)
	messenger.On("SendMessage", mock.Anything, int64(303), "ask", voteButtons).Return(blocked)
	messenger.On("SendMessage", mock.Anything, int64(404), "ask", voteButtons).Return(nil)

	deliveries, err := notifier.BroadcastVote(context.Background(), 12, "ask")

	require.NoError(t, err)
	assert.Equal(t, []Delivery{
		{UserTelegramID: 1, ChatID: 101},
		{UserTelegramID: 3, ChatID: 303, Err: blocked},
		{UserTelegramID: 4, ChatID: 404},
	}, deliveries)
	messenger.AssertNumberOfCalls(t, "SendMessage", 3)
	users.AssertExpectations(t)
	messenger.AssertExpectations(t)
}

func TestNotifier_BroadcastVote_ListFailure(t *testing.T) {
	users := &mocks.MockUserRepository{}
	messenger := &mocks.MockMessenger{}
	notifier := NewNotifier(users, messenger, testGroupChatID)

	users.On("ListUsers", mock.Anything).Return(nil, errors.New("connection refused"))

	deliveries, err := notifier.BroadcastVote(context.Background(), 12, "ask")

	assert.Error(t, err)
	assert.Nil(t, deliveries)
	messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifier_PostToGroup(t *testing.T) {
	messenger := &mocks.MockMessenger{}
	notifier := NewNotifier(&mocks.MockUserRepository{}, messenger, testGroupChatID)

	messenger.On("SendMessage", mock.Anything, testGroupChatID, "hello", []model.Button(nil)).Return(errors.New("chat not found")).Once()

	err := notifier.PostToGroup(context.Background(), "hello")

	assert.EqualError(t, err, "failed to post to group: chat not found")
	messenger.AssertExpectations(t)
}

func TestJokeBook(t *testing.T) {
	t.Run("Seed uses the default pool", func(t *testing.T) {
		repo := &mocks.MockJokeRepository{}
		repo.On("SeedJokes", mock.Anything, model.JokeKindShame, DefaultShameJokes).Return(len(DefaultShameJokes), nil)

		inserted, err := NewJokeBook(repo).Seed(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 10, inserted)
		repo.AssertExpectations(t)
	})

	t.Run("Shame renders one joke per name", func(t *testing.T) {
		repo := &mocks.MockJokeRepository{}
		repo.On("ListJokes", mock.Anything, model.JokeKindShame).Return([]*model.Joke{
			{ID: 1, Text: "{username} first"},
			{ID: 2, Text: "second {username}"},
		}, nil).Once()

		book := NewJokeBook(repo)
		picks := []int{1, 0}
		book.intn = func(n int) int {
			assert.Equal(t, 2, n)
			next := picks[0]
			picks = picks[1:]
			return next
		}

		shame, err := book.Shame(context.Background(), "bob", "")

		require.NoError(t, err)
		assert.Equal(t, []string{"second bob", "unknown first"}, shame)
		repo.AssertExpectations(t)
	})

	t.Run("Empty pool yields nothing", func(t *testing.T) {
		repo := &mocks.MockJokeRepository{}
		repo.On("ListJokes", mock.Anything, model.JokeKindShame).Return([]*model.Joke{}, nil)

		shame, err := NewJokeBook(repo).Shame(context.Background(), "bob")

		require.NoError(t, err)
		assert.Empty(t, shame)
	})

	t.Run("Every default joke names the user", func(t *testing.T) {
		for _, text := range DefaultShameJokes {
			assert.Contains(t, text, "{username}")
		}
	})
}
