package model

import "time"

type MeetingStatus string

const (
	MeetingStatusVoting    MeetingStatus = "voting"
	MeetingStatusCompleted MeetingStatus = "completed"
)

type Meeting struct {
	ID          int64
	Time        string
	Description string
	CreatedBy   int64
	Status      MeetingStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
	Votes       []*Vote
}

type Vote struct {
	UserTelegramID int64
	MeetingID      int64
	Decision       bool
	Preference     *string
	VoterHandle    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tally splits the meeting votes by decision, keeping the stored order.
func (m *Meeting) Tally() (participants, decliners []*Vote) {
	for _, v := range m.Votes {
		if v.Decision {
			participants = append(participants, v)
		} else {
			decliners = append(decliners, v)
		}
	}
	return participants, decliners
}

func (v *Vote) DisplayHandle() string {
	if v.VoterHandle == "" {
		return UnknownHandle
	}
	return v.VoterHandle
}

type CloseAction string

const (
	CloseActionEnd    CloseAction = "end"
	CloseActionCancel CloseAction = "cancel"
)

type MeetingSummary struct {
	Meeting      *Meeting
	Action       CloseAction
	Participants []*Vote
	Decliners    []*Vote
	Text         string
}
