package service

import (
	"context"
	"fmt"
	"math/rand"

	"kaban_bot/internal/model"
)

// DefaultShameJokes seed an empty joke pool.
var DefaultShameJokes = []string{
	"Говорят, что {username} так часто сливается с кабанов, что его уже включили в Красную книгу как исчезающий вид участника.",
	"{username} снова сливается? Наверное, думает, что «кабан» — это название нового фильма ужасов.",
	"Статистика показывает: {username} участвует в кабанах реже, чем появляются затмения солнца.",
	"{username} опять не идет? Может, стоит переименовать кабана в «встречу для всех, кроме {username}»?",
	"Если бы сливы с кабанов были олимпийским видом спорта, {username} точно получил бы золото.",
	"{username} сливается так мастерски, что даже водопроводчики завидуют его навыкам.",
	"Легенда гласит: {username} когда-то пришел на кабана, но это было так давно, что свидетели уже забыли, как он выглядит.",
	"Кабан без {username} — как борщ без сметаны: можно есть, но чего-то не хватает. Впрочем, мы привыкли.",
	"{username} настолько редко приходит на кабаны, что его фотографию уже повесили в музее как экспонат «Участник, которого мы потеряли».",
	"Если {username} когда-нибудь придет на кабана, это станет историческим событием, достойным отдельного праздника.",
}

// JokeBook picks random shame templates from the joke pool.
type JokeBook struct {
	repo JokeRepository
	intn func(n int) int
}

func NewJokeBook(repo JokeRepository) *JokeBook {
	return &JokeBook{
		repo: repo,
		intn: rand.Intn,
	}
}

// Seed fills an empty pool with DefaultShameJokes.
func (b *JokeBook) Seed(ctx context.Context) (int, error) {
	inserted, err := b.repo.SeedJokes(ctx, model.JokeKindShame, DefaultShameJokes)
	if err != nil {
		return 0, fmt.Errorf("failed to seed jokes: %w", err)
	}
	return inserted, nil
}

// Shame returns one rendered joke per username, in order. An empty pool yields
// an empty slice.
func (b *JokeBook) Shame(ctx context.Context, usernames ...string) ([]string, error) {
	jokes, err := b.repo.ListJokes(ctx, model.JokeKindShame)
	if err != nil {
		return nil, fmt.Errorf("failed to list shame jokes: %w", err)
	}
	if len(jokes) == 0 {
		return nil, nil
	}

	out := make([]string, len(usernames))
	for i, username := range usernames {
		out[i] = jokes[b.intn(len(jokes))].Render(username)
	}
	return out, nil
}
