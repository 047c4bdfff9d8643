package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kaban_bot/internal/model"

	"github.com/Masterminds/squirrel"
)

// UpsertVote stores the decision, replacing any earlier vote of the same user on the meeting.
func (r *Repository) UpsertVote(ctx context.Context, vote *model.Vote) error {
	var preference sql.NullString
	if vote.Preference != nil {
		preference = sql.NullString{String: *vote.Preference, Valid: true}
	}

	query, args, err := squirrel.
		Insert("votes").
		SetMap(map[string]interface{}{
			"user_telegram_id": vote.UserTelegramID,
			"meeting_id":       vote.MeetingID,
			"decision":         vote.Decision,
			"preference":       preference,
		}).
		Suffix(`ON CONFLICT (user_telegram_id, meeting_id) DO UPDATE SET
			decision = EXCLUDED.decision,
			preference = EXCLUDED.preference,
			updated_at = NOW()
			RETURNING created_at, updated_at`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build vote upsert query: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&vote.CreatedAt, &vote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return nil
}

func (r *Repository) GetVote(ctx context.Context, telegramID, meetingID int64) (*model.Vote, error) {
	query, args, err := squirrel.
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
		Where(squirrel.Eq{"v.user_telegram_id": telegramID, "v.meeting_id": meetingID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row meetingVote
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

// CountUserVotes returns how many votes the user cast and how many of them were positive.
func (r *Repository) CountUserVotes(ctx context.Context, telegramID int64) (total, positive int, err error) {
	query, args, err := squirrel.
		Select("COUNT(*)", "COUNT(*) FILTER (WHERE decision)").
		From("votes").
		Where(squirrel.Eq{"user_telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, 0, err
	}

	err = r.db.QueryRowxContext(ctx, query, args...).Scan(&total, &positive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count user votes: %w", err)
	}

	return total, positive, nil
}
