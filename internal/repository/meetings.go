package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kaban_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Meeting struct {
	ID          int64      `db:"id"`
	Time        string     `db:"meeting_time"`
	Description string     `db:"description"`
	CreatedBy   int64      `db:"created_by"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

type meetingWithRoster struct {
	Meeting
	VoterIDs     pq.Int64Array  `db:"voter_ids"`
	VoterHandles pq.StringArray `db:"voter_handles"`
	Decisions    pq.BoolArray   `db:"decisions"`
}

type meetingVote struct {
	UserTelegramID int64          `db:"user_telegram_id"`
	MeetingID      int64          `db:"meeting_id"`
	Decision       bool           `db:"decision"`
	Preference     sql.NullString `db:"preference"`
	VoterHandle    sql.NullString `db:"handle"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

var meetingColumns = []string{"id", "meeting_time", "description", "created_by", "status", "created_at", "completed_at"}

func (m *Meeting) toModel() *model.Meeting {
	return &model.Meeting{
		ID:          m.ID,
		Time:        m.Time,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		Status:      model.MeetingStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}

func (v *meetingVote) toModel() *model.Vote {
	vote := &model.Vote{
		UserTelegramID: v.UserTelegramID,
		MeetingID:      v.MeetingID,
		Decision:       v.Decision,
		VoterHandle:    v.VoterHandle.String,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	if v.Preference.Valid {
		preference := v.Preference.String
		vote.Preference = &preference
	}
	return vote
}

// CreateMeeting inserts the meeting in voting status and fills its id and timestamps.
func (r *Repository) CreateMeeting(ctx context.Context, meeting *model.Meeting) error {
	query, args, err := squirrel.
		Insert("meetings").
		SetMap(map[string]interface{}{
			"meeting_time": meeting.Time,
			"description":  meeting.Description,
			"created_by":   meeting.CreatedBy,
			"status":       string(model.MeetingStatusVoting),
		}).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build meeting insert query: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&meeting.ID, &meeting.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}
	meeting.Status = model.MeetingStatusVoting

	return nil
}

// GetMeeting returns the meeting with its votes and voter handles.
func (r *Repository) GetMeeting(ctx context.Context, id int64) (*model.Meeting, error) {
	return r.getMeeting(ctx, r.db, id)
}

func (r *Repository) getMeeting(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Meeting, error) {
	query, args, err := squirrel.
		Select(meetingColumns...).
		From("meetings").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row Meeting
	err = sqlx.GetContext(ctx, q, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	votesQuery, votesArgs, err := squirrel.
		Select(
			"v.user_telegram_id",
			"v.meeting_id",
			"v.decision",
			"v.preference",
			"u.handle",
			"v.created_at",
			"v.updated_at",
		).
		From("votes v").
		Join("users u ON u.telegram_id = v.user_telegram_id").
		Where(squirrel.Eq{"v.meeting_id": id}).
		OrderBy("v.created_at", "v.user_telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build meeting votes query: %w", err)
	}

	var votes []meetingVote
	if err := sqlx.SelectContext(ctx, q, &votes, votesQuery, votesArgs...); err != nil {
		return nil, fmt.Errorf("failed to get meeting votes: %w", err)
	}

	meeting := row.toModel()
	meeting.Votes = make([]*model.Vote, len(votes))
	for i := range votes {
		meeting.Votes[i] = votes[i].toModel()
	}

	return meeting, nil
}

// ListActiveMeetings returns voting meetings newest first. Votes carry only the
// voter id, handle and decision.
func (r *Repository) ListActiveMeetings(ctx context.Context) ([]*model.Meeting, error) {
	query, args, err := squirrel.
		Select(
			"m.id",
			"m.meeting_time",
			"m.description",
			"m.created_by",
			"m.status",
			"m.created_at",
			"m.completed_at",
			"array_agg(v.user_telegram_id ORDER BY v.created_at) FILTER (WHERE v.user_telegram_id IS NOT NULL) AS voter_ids",
			"array_agg(COALESCE(u.handle, '') ORDER BY v.created_at) FILTER (WHERE v.user_telegram_id IS NOT NULL) AS voter_handles",
			"array_agg(v.decision ORDER BY v.created_at) FILTER (WHERE v.user_telegram_id IS NOT NULL) AS decisions",
		).
		From("meetings m").
		LeftJoin("votes v ON v.meeting_id = m.id").
		LeftJoin("users u ON u.telegram_id = v.user_telegram_id").
		Where(squirrel.Eq{"m.status": string(model.MeetingStatusVoting)}).
		GroupBy("m.id").
		OrderBy("m.created_at DESC", "m.id DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active meetings query: %w", err)
	}

	var rows []*meetingWithRoster
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list active meetings: %w", err)
	}

	meetings := make([]*model.Meeting, len(rows))
	for i, row := range rows {
		meeting := row.toModel()
		meeting.Votes = make([]*model.Vote, len(row.VoterIDs))
		for j := range row.VoterIDs {
			meeting.Votes[j] = &model.Vote{
				UserTelegramID: row.VoterIDs[j],
				MeetingID:      row.ID,
				Decision:       row.Decisions[j],
				VoterHandle:    row.VoterHandles[j],
			}
		}
		meetings[i] = meeting
	}

	return meetings, nil
}

// CompleteMeeting moves a voting meeting to completed. It fails with
// ErrMeetingNotVoting when the meeting was already completed.
func (r *Repository) CompleteMeeting(ctx context.Context, id int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("meetings").
			Set("status", string(model.MeetingStatusCompleted)).
			Set("completed_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id, "status": string(model.MeetingStatusVoting)}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to complete meeting: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows > 0 {
			return nil
		}

		if _, err := r.getMeeting(ctx, tx, id); err != nil {
			return err
		}
		return ErrMeetingNotVoting
	})
}
