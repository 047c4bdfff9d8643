package bot

import (
	"errors"

	"kaban_bot/internal/model"
	"kaban_bot/internal/service"
)

const (
	welcomeText = "🐗 Привет! Я бот Кабан!\n\n" +
		"Я помогу организовать встречи и собрать статистику участия.\n\n" +
		"Команды:\n" +
		"/kaban <время> <описание> - создать встречу\n" +
		"/meetings - показать активные встречи\n" +
		"/stats - показать статистику участия\n\n" +
		"Пример: /kaban 19:00 ВПН шоп"

	helpText = "🤔 Такой команды нет.\n\n" +
		"/kaban <время> <описание> - создать встречу\n" +
		"/meetings - показать активные встречи\n" +
		"/stats - показать статистику участия"

	meetingUsageText = "❌ Неправильный формат команды!\n\n" +
		"Используй: /kaban <время> <описание>\n" +
		"Пример: /kaban 19:00 Финский"

	unknownButtonText = "❌ Неизвестная кнопка"
	genericErrorText  = "❌ Что-то пошло не так. Попробуй еще раз."
)

var gateReplies = map[error]string{
	service.ErrUnknownSender:        "Как ты это сделал?",
	service.ErrGroupChat:            "Пиши мне в личку, в общем чате я не отвечаю",
	service.ErrRegistrationRequired: "Тут серьезные люди пароль поставили. Регистрация: /start <пароль>",
	service.ErrNotRegistered:        "Зарегистрируйся, умник: /start <пароль>",
	service.ErrPasswordRequired:     "А пароль то знать надо",
	service.ErrWrongPassword:        "Неверный пароль, вход запрещен",
}

var domainReplies = map[error]string{
	service.ErrInvalidMeetingArgs: meetingUsageText,
	service.ErrInvalidMeetingTime: "❌ Неправильный формат времени! Используй HH:MM (например, 19:00)",
	service.ErrMeetingNotFound:    "❌ Встреча с таким ID не найдена!",
	service.ErrMeetingNotVoting:   "❌ Голосование по этой встрече уже завершено!",
	service.ErrNotMeetingCreator:  "❌ Только создатель встречи может завершить голосование!",
	service.ErrUserNotFound:       "❌ Статистика не найдена. Сначала проголосуй за какую-нибудь встречу!",
}

// replyForError maps a handler error to the text shown to the user. The second
// result is false for errors that are not part of the expected flow.
func replyForError(cmd model.Command, err error) (string, bool) {
	for _, replies := range []map[error]string{gateReplies, domainReplies} {
		for target, text := range replies {
			if errors.Is(err, target) {
				return text, true
			}
		}
	}
	return failureText(cmd), false
}

func failureText(cmd model.Command) string {
	switch cmd.(type) {
	case model.StartCommand:
		return "❌ Ошибка при регистрации."
	case model.CreateMeetingCommand:
		return "❌ Ошибка при создании встречи. Попробуй еще раз."
	case model.ListMeetingsCommand:
		return "❌ Ошибка при получении списка встреч."
	case model.StatsCommand:
		return "❌ Ошибка при получении статистики."
	case model.VoteCommand:
		return "❌ Ошибка при записи голоса"
	case model.CloseMeetingCommand:
		return "❌ Ошибка при завершении голосования."
	}
	return genericErrorText
}
