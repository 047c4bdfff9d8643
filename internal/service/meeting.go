package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"kaban_bot/internal/model"
	"kaban_bot/internal/repository"
	"kaban_bot/pkg/logger"

	"go.uber.org/zap"
)

const (
	buttonEnd    = "Завершить"
	buttonCancel = "Отменить"
)

var meetingTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type MeetingService struct {
	meetings  MeetingRepository
	votes     VoteRepository
	jokes     *JokeBook
	notifier  *Notifier
	publisher EventPublisher
	now       func() time.Time
}

func NewMeetingService(
	meetings MeetingRepository,
	votes VoteRepository,
	jokes *JokeBook,
	notifier *Notifier,
	publisher EventPublisher,
) *MeetingService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &MeetingService{
		meetings:  meetings,
		votes:     votes,
		jokes:     jokes,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

// ValidateMeetingArgs checks the /kaban arguments before anything is stored.
func ValidateMeetingArgs(cmd model.CreateMeetingCommand) error {
	if cmd.Time == "" || strings.TrimSpace(cmd.Description) == "" {
		return ErrInvalidMeetingArgs
	}
	if !meetingTimePattern.MatchString(cmd.Time) {
		return ErrInvalidMeetingTime
	}
	return nil
}

// CreateMeeting stores a new meeting in voting state and then notifies the
// creator, the group and every user. Notification failures never undo the meeting.
func (s *MeetingService) CreateMeeting(ctx context.Context, creator *model.User, creatorName string, cmd model.CreateMeetingCommand) (*model.Meeting, error) {
	if err := ValidateMeetingArgs(cmd); err != nil {
		return nil, err
	}

	meeting := &model.Meeting{
		Time:        cmd.Time,
		Description: strings.TrimSpace(cmd.Description),
		CreatedBy:   creator.TelegramID,
		Status:      model.MeetingStatusVoting,
	}
	if err := s.meetings.CreateMeeting(ctx, meeting); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	s.announceMeeting(ctx, meeting, creator, creatorName)

	s.publisher.Publish(model.MeetingEvent{
		Type:        model.EventMeetingCreated,
		MeetingID:   meeting.ID,
		Time:        meeting.Time,
		Description: meeting.Description,
		Status:      meeting.Status,
		UserID:      creator.TelegramID,
		At:          s.now(),
	})

	return meeting, nil
}

func (s *MeetingService) announceMeeting(ctx context.Context, meeting *model.Meeting, creator *model.User, creatorName string) {
	log := logger.Logger().With(zap.Int64("meeting_id", meeting.ID))

	err := s.notifier.SendTo(ctx, creator.ChatID, meetingCreatedText,
		model.Button{Text: buttonEnd, Data: model.CloseMeetingCommand{MeetingID: meeting.ID, Action: model.CloseActionEnd}.CallbackData()},
		model.Button{Text: buttonCancel, Data: model.CloseMeetingCommand{MeetingID: meeting.ID, Action: model.CloseActionCancel}.CallbackData()},
	)
	if err != nil {
		log.Error("failed to confirm meeting to creator", zap.Error(err), zap.Int64("telegram_id", creator.TelegramID))
	}

	proposal := meetingProposal(meeting, creatorName)
	if err := s.notifier.PostToGroup(ctx, groupAnnouncement(proposal)); err != nil {
		log.Error("failed to announce meeting", zap.Error(err))
	}

	deliveries, err := s.notifier.BroadcastVote(ctx, meeting.ID, proposal+askVoteSuffix)
	if err != nil {
		log.Error("failed to broadcast vote request", zap.Error(err))
		return
	}

	failed := 0
	for _, d := range deliveries {
		if d.Err != nil {
			failed++
		}
	}
	log.Info("vote request broadcast", zap.Int("recipients", len(deliveries)), zap.Int("failed", failed))
}

// RecordVote upserts the voter's decision and returns the acknowledgment for
// the voter. The meeting status is not checked, so late votes are kept.
func (s *MeetingService) RecordVote(ctx context.Context, voter *model.User, voterName string, cmd model.VoteCommand) (string, error) {
	meeting, err := s.getMeeting(ctx, cmd.MeetingID)
	if err != nil {
		return "", err
	}

	vote := &model.Vote{
		UserTelegramID: voter.TelegramID,
		MeetingID:      meeting.ID,
		Decision:       cmd.Decision,
	}
	if err := s.votes.UpsertVote(ctx, vote); err != nil {
		return "", fmt.Errorf("failed to record vote: %w", err)
	}

	log := logger.Logger().With(zap.Int64("meeting_id", meeting.ID), zap.Int64("telegram_id", voter.TelegramID))

	var announcement string
	if cmd.Decision {
		announcement = joinAnnouncement(voterName, meeting)
	} else {
		shame, err := s.jokes.Shame(ctx, voter.DisplayHandle())
		if err != nil {
			log.Error("failed to pick shame joke", zap.Error(err))
		}
		announcement = declineAnnouncement(voterName, shame)
	}
	if err := s.notifier.PostToGroup(ctx, announcement); err != nil {
		log.Error("failed to announce vote", zap.Error(err))
	}

	decision := cmd.Decision
	s.publisher.Publish(model.MeetingEvent{
		Type:      model.EventVoteRecorded,
		MeetingID: meeting.ID,
		Time:      meeting.Time,
		Status:    meeting.Status,
		UserID:    voter.TelegramID,
		Decision:  &decision,
		At:        s.now(),
	})

	return voteAck(meeting, cmd.Decision), nil
}

// CloseMeeting ends or cancels a voting meeting on behalf of its creator and
// posts the summary to the group.
func (s *MeetingService) CloseMeeting(ctx context.Context, requesterID int64, cmd model.CloseMeetingCommand) (*model.MeetingSummary, error) {
	meeting, err := s.getMeeting(ctx, cmd.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != model.MeetingStatusVoting {
		return nil, ErrMeetingNotVoting
	}
	if meeting.CreatedBy != requesterID {
		return nil, ErrNotMeetingCreator
	}

	participants, decliners := meeting.Tally()

	handles := make([]string, len(decliners))
	for i, v := range decliners {
		handles[i] = v.DisplayHandle()
	}
	shame, err := s.jokes.Shame(ctx, handles...)
	if err != nil {
		logger.Logger().Error("failed to pick shame jokes", zap.Error(err), zap.Int64("meeting_id", meeting.ID))
	}

	summary := &model.MeetingSummary{
		Meeting:      meeting,
		Action:       cmd.Action,
		Participants: participants,
		Decliners:    decliners,
		Text:         formatSummary(meeting, cmd.Action, participants, decliners, shame),
	}

	if err := s.meetings.CompleteMeeting(ctx, meeting.ID); err != nil {
		switch {
		case errors.Is(err, repository.ErrMeetingNotVoting):
			return nil, ErrMeetingNotVoting
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to complete meeting: %w", err)
	}
	meeting.Status = model.MeetingStatusCompleted

	if err := s.notifier.PostToGroup(ctx, summary.Text); err != nil {
		logger.Logger().Error("failed to post meeting summary", zap.Error(err), zap.Int64("meeting_id", meeting.ID))
	}

	s.publisher.Publish(model.MeetingEvent{
		Type:        model.EventMeetingClosed,
		MeetingID:   meeting.ID,
		Time:        meeting.Time,
		Description: meeting.Description,
		Status:      meeting.Status,
		UserID:      requesterID,
		Action:      cmd.Action,
		At:          s.now(),
	})

	return summary, nil
}

func (s *MeetingService) ListActiveMeetings(ctx context.Context) ([]*model.Meeting, error) {
	meetings, err := s.meetings.ListActiveMeetings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active meetings: %w", err)
	}
	return meetings, nil
}

func (s *MeetingService) getMeeting(ctx context.Context, id int64) (*model.Meeting, error) {
	meeting, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}
