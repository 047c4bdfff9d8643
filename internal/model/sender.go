package model

// Sender identifies who issued an inbound command and where it came from.
type Sender struct {
	TelegramID int64
	Handle     string
	FirstName  string
	ChatID     int64
	Private    bool
}

// Mention is how the sender is addressed in group announcements.
func (s Sender) Mention() string {
	switch {
	case s.Handle != "":
		return "@" + s.Handle
	case s.FirstName != "":
		return s.FirstName
	default:
		return UnknownHandle
	}
}

// Button is an inline keyboard button carrying encoded callback data.
type Button struct {
	Text string
	Data string
}
