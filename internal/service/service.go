package service

import (
	"context"
	"errors"

	"kaban_bot/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")

	ErrUnknownSender        = errors.New("sender is unknown")
	ErrGroupChat            = errors.New("command is not allowed in the group chat")
	ErrNotRegistered        = errors.New("user is not registered")
	ErrRegistrationRequired = errors.New("registration is required")
	ErrPasswordRequired     = errors.New("registration password is required")
	ErrWrongPassword        = errors.New("wrong registration password")

	ErrInvalidMeetingArgs = errors.New("meeting time and description are required")
	ErrInvalidMeetingTime = errors.New("meeting time must be HH:MM")
	ErrMeetingNotFound    = errors.New("meeting not found")
	ErrMeetingNotVoting   = errors.New("meeting voting is already finished")
	ErrNotMeetingCreator  = errors.New("only the meeting creator can close it")
)

type UserServiceI interface {
	Register(ctx context.Context, sender model.Sender) (*model.User, error)
	Refresh(ctx context.Context, user *model.User, sender model.Sender) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetUserStats(ctx context.Context, telegramID int64) (*model.UserStats, error)
}

type MeetingServiceI interface {
	CreateMeeting(ctx context.Context, creator *model.User, creatorName string, cmd model.CreateMeetingCommand) (*model.Meeting, error)
	RecordVote(ctx context.Context, voter *model.User, voterName string, cmd model.VoteCommand) (string, error)
	CloseMeeting(ctx context.Context, requesterID int64, cmd model.CloseMeetingCommand) (*model.MeetingSummary, error)
	ListActiveMeetings(ctx context.Context) ([]*model.Meeting, error)
}

type AccessGateI interface {
	Check(ctx context.Context, req GateRequest) (*model.User, error)
}

type UserRepository interface {
	UpsertUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting *model.Meeting) error
	GetMeeting(ctx context.Context, id int64) (*model.Meeting, error)
	ListActiveMeetings(ctx context.Context) ([]*model.Meeting, error)
	CompleteMeeting(ctx context.Context, id int64) error
}

type VoteRepository interface {
	UpsertVote(ctx context.Context, vote *model.Vote) error
	CountUserVotes(ctx context.Context, telegramID int64) (total, positive int, err error)
}

type JokeRepository interface {
	ListJokes(ctx context.Context, kind model.JokeKind) ([]*model.Joke, error)
	SeedJokes(ctx context.Context, kind model.JokeKind, texts []string) (int, error)
}

// Messenger delivers a text message, optionally with one row of inline buttons.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, buttons ...model.Button) error
}

// EventPublisher receives lifecycle events for live subscribers.
type EventPublisher interface {
	Publish(event model.MeetingEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.MeetingEvent) {}
