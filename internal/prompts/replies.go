package prompts

import (
	"fmt"
	"strings"

	"github.com/avvvet/companion/internal/models"
)

// Replies for the dispatch commands and non-text messages.
const (
	WelcomeReply = `👋 Привет! Я Аня - твой ИИ-собеседник.

Давай познакомимся поближе! Я люблю:
🎨 Искусство и фотографию
🎵 Музыку (играю на гитаре)
✈️ Путешествия
📚 Интересные беседы

Просто напиши мне что-нибудь, и я с радостью отвечу!

Команды:
/start - это сообщение
/help - помощь
/clear - очистить историю нашего разговора
/about - обо мне
/stats - что я о тебе помню`

	HelpReply = "Просто напиши мне сообщение, и я отвечу! 😊"

	AboutReply = `ℹ️ Обо мне:

Я - Аня, ИИ-собеседник с характером и увлечениями.
Мне 25 лет, я из Санкт-Петербурга.

Мои интересы:
• Живопись и современное искусство
• Игра на гитаре (люблю инди-рок)
• Путешествия (была в 15 странах)
• Фотография и кулинария

Я помню наши разговоры и стараюсь быть интересным собеседником!`

	ClearedReply = "💫 Наша история диалога очищена! Начнем заново!"

	UnknownCommandReply = "Хм, такой команды я не знаю... Попробуй /help 😊"

	// ErrorReply is sent when dispatch itself breaks.
	ErrorReply = "Упс, что-то пошло не так... Давай попробуем еще раз? 😅"
)

var mediaReplies = []string{
	"Интересно! 📸 Но я лучше понимаю текстовые сообщения 😊",
	"Классно! 🖼️ Напиши мне что-нибудь об этом текстом?",
	"Ух ты! ✨ А теперь расскажи об этом словами?",
	"Красиво! 🌟 Хочешь поделиться историей текстом?",
}

var otherReplies = []string{
	"Привет! Я понимаю только текстовые сообщения и фото 😊",
	"Ой, я пока не умею работать с такими сообщениями... Напиши мне текст! 💫",
	"Интересно! Но я лучше понимаю текстовые сообщения 😅",
}

// MediaReply answers photos, videos and attachments.
func MediaReply(rng Chooser) string {
	return pick(mediaReplies, rng)
}

// OtherReply answers stickers, voice notes and anything else non-text.
func OtherReply(rng Chooser) string {
	return pick(otherReplies, rng)
}

// StatsReply renders what the companion remembers about the user.
func StatsReply(stats models.Stats) string {
	var b strings.Builder
	b.WriteString("📊 Что я о тебе помню:\n")
	if stats.Name != "" {
		fmt.Fprintf(&b, "• Имя: %s\n", stats.Name)
	}
	if len(stats.Interests) > 0 {
		fmt.Fprintf(&b, "• Интересы: %s\n", strings.Join(stats.Interests, ", "))
	}
	fmt.Fprintf(&b, "• Разговоров: %d\n", stats.ConversationCount)
	fmt.Fprintf(&b, "• Сообщений в истории: %d", stats.HistoryLength)
	return b.String()
}
