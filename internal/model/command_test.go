package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		args     string
		expected Command
	}{
		{
			name:     "start with password",
			command:  "start",
			args:     "secret extra",
			expected: StartCommand{Password: "secret"},
		},
		{
			name:     "start without password",
			command:  "start",
			args:     "",
			expected: StartCommand{},
		},
		{
			name:     "kaban with multi-word description",
			command:  "kaban",
			args:     "19:00  VPN   shop",
			expected: CreateMeetingCommand{Time: "19:00", Description: "VPN shop"},
		},
		{
			name:     "kaban with time only",
			command:  "kaban",
			args:     "19:00",
			expected: CreateMeetingCommand{Time: "19:00"},
		},
		{
			name:     "meetings",
			command:  "meetings",
			expected: ListMeetingsCommand{},
		},
		{
			name:     "stats is case insensitive",
			command:  "Stats",
			expected: StatsCommand{},
		},
		{
			name:     "unknown",
			command:  "help",
			expected: UnknownCommand{Name: "help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCommand(tt.command, tt.args))
		})
	}
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected Command
		wantErr  bool
	}{
		{name: "vote yes", data: "vote/yes_12", expected: VoteCommand{MeetingID: 12, Decision: true}},
		{name: "vote yes with trailing separator", data: "vote/yes_12_", expected: VoteCommand{MeetingID: 12, Decision: true}},
		{name: "vote no", data: "vote/no_7", expected: VoteCommand{MeetingID: 7}},
		{name: "meeting end", data: "meeting/3_end", expected: CloseMeetingCommand{MeetingID: 3, Action: CloseActionEnd}},
		{name: "meeting cancel", data: "meeting/3_cancel", expected: CloseMeetingCommand{MeetingID: 3, Action: CloseActionCancel}},
		{name: "no separator", data: "vote", wantErr: true},
		{name: "unknown kind", data: "poll/yes_1", wantErr: true},
		{name: "bad decision", data: "vote/maybe_1", wantErr: true},
		{name: "bad meeting id", data: "vote/yes_abc", wantErr: true},
		{name: "zero meeting id", data: "meeting/0_end", wantErr: true},
		{name: "bad action", data: "meeting/3_delete", wantErr: true},
		{name: "missing action", data: "meeting/3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseCallbackData(tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedCallback)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestCallbackData_RoundTrip(t *testing.T) {
	for _, cmd := range []interface {
		Command
		CallbackData() string
	}{
		VoteCommand{MeetingID: 42, Decision: true},
		VoteCommand{MeetingID: 42, Decision: false},
		CloseMeetingCommand{MeetingID: 9, Action: CloseActionEnd},
		CloseMeetingCommand{MeetingID: 9, Action: CloseActionCancel},
	} {
		decoded, err := ParseCallbackData(cmd.CallbackData())
		require.NoError(t, err)
		assert.Equal(t, cmd, decoded)
	}

	assert.Equal(t, "vote/yes_42", VoteCommand{MeetingID: 42, Decision: true}.CallbackData())
	assert.Equal(t, "meeting/9_cancel", CloseMeetingCommand{MeetingID: 9, Action: CloseActionCancel}.CallbackData())
}

func TestMeeting_Tally(t *testing.T) {
	m := &Meeting{Votes: []*Vote{
		{UserTelegramID: 1, Decision: true},
		{UserTelegramID: 2, Decision: false},
		{UserTelegramID: 3, Decision: true},
	}}

	participants, decliners := m.Tally()
	require.Len(t, participants, 2)
	require.Len(t, decliners, 1)
	assert.Equal(t, int64(1), participants[0].UserTelegramID)
	assert.Equal(t, int64(3), participants[1].UserTelegramID)
	assert.Equal(t, int64(2), decliners[0].UserTelegramID)
}

func TestJoke_Render(t *testing.T) {
	j := &Joke{Text: "{username} again? Rename it to a meeting for everyone but {username}."}

	assert.Equal(t, "bob again? Rename it to a meeting for everyone but bob.", j.Render("bob"))
	assert.Equal(t, "unknown again? Rename it to a meeting for everyone but unknown.", j.Render(""))
}

func TestDisplayHandle(t *testing.T) {
	var nilUser *User
	assert.Equal(t, UnknownHandle, nilUser.DisplayHandle())
	assert.Equal(t, UnknownHandle, (&User{}).DisplayHandle())
	assert.Equal(t, "alice", (&User{Handle: "alice"}).DisplayHandle())
	assert.Equal(t, UnknownHandle, (&Vote{}).DisplayHandle())
}
