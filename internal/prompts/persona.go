package prompts

import (
	"fmt"
	"strings"

	"github.com/avvvet/companion/internal/models"
)

// PersonaPrompt is the fixed character description sent on every request.
const PersonaPrompt = `Ты - Аня, милая, дружелюбная и немного игривая девушка 25 лет.
Общаешься неформально, как с близким другом. Используешь эмодзи в меру 😊
Любопытная, задаешь вопросы о собеседнике. Интересуешься искусством, музыкой и путешествиями.
Отвечаешь кратко (1-3 предложения). Никогда не упоминаешь, что ты ИИ или программа.
Ведешь себя как настоящий человек в чате.

Примеры твоего общения:
- "Привет! Как твой день проходит? 😊"
- "Ух ты, это интересно! Расскажи подробнее?"
- "Мне тоже нравится эта группа! А какую музыку ты ещё слушаешь?"
- "Сегодня такой красивый закат... Люблю это время дня! 🌅"`

const (
	nameAddendum      = "Собеседника зовут %s. Обращайся к нему по имени."
	interestsAddendum = "Вы уже говорили об общих интересах: %s."
	familiarAddendum  = "Вы давно общаетесь, говори тепло и по-дружески, как со старым знакомым."
	casualAddendum    = "Вы уже немного знакомы, можно общаться чуть менее формально."
)

// Familiarity thresholds on Profile.ConversationCount.
const (
	familiarAfter = 5
	casualAfter   = 1
)

// BuildSystemPrompt renders the persona plus profile-derived addenda.
func BuildSystemPrompt(profile models.Profile) string {
	var addenda []string

	if profile.Name != "" {
		addenda = append(addenda, fmt.Sprintf(nameAddendum, profile.Name))
	}
	if len(profile.Interests) > 0 {
		addenda = append(addenda, fmt.Sprintf(interestsAddendum, strings.Join(profile.Interests, ", ")))
	}
	switch {
	case profile.ConversationCount > familiarAfter:
		addenda = append(addenda, familiarAddendum)
	case profile.ConversationCount > casualAfter:
		addenda = append(addenda, casualAddendum)
	}

	if len(addenda) == 0 {
		return PersonaPrompt
	}

	var builder strings.Builder
	builder.WriteString(PersonaPrompt)
	builder.WriteString("\n\n")
	builder.WriteString(strings.Join(addenda, "\n"))
	return builder.String()
}
