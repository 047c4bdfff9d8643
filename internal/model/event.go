package model

import "time"

type EventType string

const (
	EventMeetingCreated EventType = "meeting_created"
	EventVoteRecorded   EventType = "vote_recorded"
	EventMeetingClosed  EventType = "meeting_closed"
)

// MeetingEvent is pushed to feed subscribers after a lifecycle change.
type MeetingEvent struct {
	Type        EventType     `json:"type"`
	MeetingID   int64         `json:"meeting_id"`
	Time        string        `json:"time,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      MeetingStatus `json:"status,omitempty"`
	UserID      int64         `json:"user_id,omitempty"`
	Decision    *bool         `json:"decision,omitempty"`
	Action      CloseAction   `json:"action,omitempty"`
	At          time.Time     `json:"at"`
}
