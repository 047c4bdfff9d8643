package repository

import (
	"context"
	"fmt"

	"kaban_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Joke struct {
	ID   int64  `db:"id"`
	Text string `db:"text"`
	Kind string `db:"kind"`
}

func (r *Repository) ListJokes(ctx context.Context, kind model.JokeKind) ([]*model.Joke, error) {
	query, args, err := squirrel.
		Select("id", "text", "kind").
		From("jokes").
		Where(squirrel.Eq{"kind": string(kind)}).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Joke
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jokes: %w", err)
	}

	jokes := make([]*model.Joke, len(rows))
	for i, row := range rows {
		jokes[i] = &model.Joke{
			ID:   row.ID,
			Text: row.Text,
			Kind: model.JokeKind(row.Kind),
		}
	}
	return jokes, nil
}

func (r *Repository) AddJoke(ctx context.Context, joke *model.Joke) error {
	query, args, err := squirrel.
		Insert("jokes").
		Columns("text", "kind").
		Values(joke.Text, string(joke.Kind)).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build joke insert query: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&joke.ID); err != nil {
		return fmt.Errorf("failed to insert joke: %w", err)
	}
	return nil
}

// SeedJokes inserts the given templates only when the jokes table is empty.
// It returns the number of inserted rows.
func (r *Repository) SeedJokes(ctx context.Context, kind model.JokeKind, texts []string) (int, error) {
	inserted := 0

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		// Serializes concurrent seeders; the lock is released on commit.
		if _, err := tx.ExecContext(ctx, "LOCK TABLE jokes IN EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("failed to lock jokes: %w", err)
		}

		countQuery, countArgs, err := squirrel.
			Select("COUNT(*)").
			From("jokes").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var existing int
		if err := tx.GetContext(ctx, &existing, countQuery, countArgs...); err != nil {
			return fmt.Errorf("failed to count jokes: %w", err)
		}
		if existing > 0 || len(texts) == 0 {
			return nil
		}

		builder := squirrel.
			Insert("jokes").
			Columns("text", "kind")
		for _, text := range texts {
			builder = builder.Values(text, string(kind))
		}

		query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build jokes insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert jokes: %w", err)
		}
		inserted = len(texts)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
