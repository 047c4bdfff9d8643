package mocks

import (
	"context"

	"kaban_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string, buttons ...model.Button) error {
	args := m.Called(ctx, chatID, text, buttons)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event model.MeetingEvent) {
	m.Called(event)
}
