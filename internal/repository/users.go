package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kaban_bot/internal/model"

	"github.com/Masterminds/squirrel"
)

type User struct {
	TelegramID   int64          `db:"telegram_id"`
	Handle       sql.NullString `db:"handle"`
	ChatID       int64          `db:"chat_id"`
	RegisteredAt time.Time      `db:"registered_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

var userColumns = []string{"telegram_id", "handle", "chat_id", "registered_at", "updated_at"}

func (u *User) toModel() *model.User {
	return &model.User{
		TelegramID:   u.TelegramID,
		Handle:       u.Handle.String,
		ChatID:       u.ChatID,
		RegisteredAt: u.RegisteredAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UpsertUser creates the user or refreshes its handle and chat id. Empty values
// never overwrite stored ones; a new user without a chat id is reachable at its own id.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	chatID := user.ChatID
	if chatID == 0 {
		chatID = user.TelegramID
	}

	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"telegram_id": user.TelegramID,
			"handle":      sql.NullString{String: user.Handle, Valid: user.Handle != ""},
			"chat_id":     chatID,
		}).
		Suffix(`ON CONFLICT (telegram_id) DO UPDATE SET
			handle = COALESCE(EXCLUDED.handle, users.handle),
			chat_id = CASE WHEN ? THEN EXCLUDED.chat_id ELSE users.chat_id END,
			updated_at = NOW()
			RETURNING telegram_id, handle, chat_id, registered_at, updated_at`, user.ChatID != 0).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user upsert query: %w", err)
	}

	var row User
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&row); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query, args, err := squirrel.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user User
	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	query, args, err := squirrel.
		Select(userColumns...).
		From("users").
		OrderBy("registered_at", "telegram_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []User
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toModel()
	}
	return users, nil
}
