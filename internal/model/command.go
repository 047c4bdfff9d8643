package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	callbackVote    = "vote"
	callbackMeeting = "meeting"
)

var ErrMalformedCallback = errors.New("malformed callback data")

// Command is an inbound bot instruction decoded from a message or a button press.
type Command interface {
	command()
}

type StartCommand struct {
	Password string
}

type CreateMeetingCommand struct {
	Time        string
	Description string
}

type ListMeetingsCommand struct{}

type StatsCommand struct{}

type UnknownCommand struct {
	Name string
}

type VoteCommand struct {
	MeetingID int64
	Decision  bool
}

type CloseMeetingCommand struct {
	MeetingID int64
	Action    CloseAction
}

func (StartCommand) command()         {}
func (CreateMeetingCommand) command() {}
func (ListMeetingsCommand) command()  {}
func (StatsCommand) command()         {}
func (UnknownCommand) command()       {}
func (VoteCommand) command()          {}
func (CloseMeetingCommand) command()  {}

// ParseCommand maps a slash command name and its raw argument string to a Command.
func ParseCommand(name, args string) Command {
	fields := strings.Fields(args)

	switch strings.ToLower(name) {
	case "start":
		var password string
		if len(fields) > 0 {
			password = fields[0]
		}
		return StartCommand{Password: password}
	case "kaban":
		var cmd CreateMeetingCommand
		if len(fields) > 0 {
			cmd.Time = fields[0]
		}
		if len(fields) > 1 {
			cmd.Description = strings.Join(fields[1:], " ")
		}
		return cmd
	case "meetings":
		return ListMeetingsCommand{}
	case "stats":
		return StatsCommand{}
	default:
		return UnknownCommand{Name: name}
	}
}

// CallbackData encodes the vote button payload as vote/<yes|no>_<meetingId>.
func (c VoteCommand) CallbackData() string {
	decision := "no"
	if c.Decision {
		decision = "yes"
	}
	return fmt.Sprintf("%s/%s_%d", callbackVote, decision, c.MeetingID)
}

// CallbackData encodes the close button payload as meeting/<meetingId>_<end|cancel>.
func (c CloseMeetingCommand) CallbackData() string {
	return fmt.Sprintf("%s/%d_%s", callbackMeeting, c.MeetingID, c.Action)
}

// ParseCallbackData decodes an inline button payload into a VoteCommand or a CloseMeetingCommand.
func ParseCallbackData(data string) (Command, error) {
	kind, payload, ok := strings.Cut(data, "/")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}

	// Older vote buttons carried a trailing separator.
	parts := strings.Split(strings.TrimSuffix(payload, "_"), "_")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
	}

	switch kind {
	case callbackVote:
		id, err := parseMeetingID(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
		}
		switch parts[0] {
		case "yes":
			return VoteCommand{MeetingID: id, Decision: true}, nil
		case "no":
			return VoteCommand{MeetingID: id, Decision: false}, nil
		}
	case callbackMeeting:
		id, err := parseMeetingID(parts[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
		}
		switch action := CloseAction(parts[1]); action {
		case CloseActionEnd, CloseActionCancel:
			return CloseMeetingCommand{MeetingID: id, Action: action}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
}

func parseMeetingID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("meeting id must be positive, got %d", id)
	}
	return id, nil
}
