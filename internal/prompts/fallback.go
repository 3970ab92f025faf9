package prompts

import (
	"strings"
	"unicode"
)

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

// EmptyMessageReply answers blank input without calling the model.
const EmptyMessageReply = "Привет! Я получила твое сообщение, но оно кажется пустым... Напиши что-нибудь! 😊"

// FallbackClass names the keyword class a message falls into.
type FallbackClass string

const (
	ClassNameQuestion FallbackClass = "name_question"
	ClassFarewell     FallbackClass = "farewell"
	ClassGreeting     FallbackClass = "greeting"
	ClassAffection    FallbackClass = "affection"
	ClassMusic        FallbackClass = "music"
	ClassTravel       FallbackClass = "travel"
	ClassArt          FallbackClass = "art"
	ClassGeneric      FallbackClass = "generic"
)

type fallbackRule struct {
	class    FallbackClass
	keywords []string
	replies  []string
}

// fallbackRules are checked in order; the first matching class wins.
var fallbackRules = []fallbackRule{
	{
		class:    ClassNameQuestion,
		keywords: []string{"как тебя зовут", "твое имя", "твоё имя", "кто ты", "your name"},
		replies:  []string{"Я Аня! 😊 А тебя как зовут?"},
	},
	{
		class:    ClassFarewell,
		keywords: []string{" пока ", "до свидания", "до встречи", "спокойной ночи", "увидимся", " bye "},
		replies: []string{
			"Пока-пока! Буду ждать тебя 💫",
			"До встречи! Было здорово поболтать 😊",
		},
	},
	{
		class:    ClassGreeting,
		keywords: []string{"привет", "здравствуй", "добрый день", "добрый вечер", "доброе утро", " хай ", "hello"},
		replies: []string{
			"Привет! Сейчас у меня немного туманится в голове... Давай попробуем через минуту? 😊",
			"Приветик! Я чуть-чуть отвлеклась, но уже здесь ✨",
		},
	},
	{
		class:    ClassAffection,
		keywords: []string{"люблю тебя", "нравишься", "обнимаю", "скучаю", "милая"},
		replies: []string{
			"Ой, как приятно! 🥰",
			"Ты меня смущаешь... Но мне очень приятно 😊",
		},
	},
	{
		class:    ClassMusic,
		keywords: []string{"музык", "гитар", "песн", "концерт"},
		replies: []string{
			"О, музыка! Я сама играю на гитаре, люблю инди-рок 🎸 А что ты слушаешь?",
			"Обожаю говорить о музыке! Какая песня у тебя сейчас на повторе? 🎵",
		},
	},
	{
		class:    ClassTravel,
		keywords: []string{"путешеств", "поездк", "отпуск", "страна"},
		replies: []string{
			"Путешествия - моя слабость! Я была в 15 странах ✈️ А куда мечтаешь поехать ты?",
			"Ух, хочу в дорогу! Расскажи, где тебе больше всего понравилось? 🌍",
		},
	},
	{
		class:    ClassArt,
		keywords: []string{"искусств", "картин", "рису", "живопис", "выставк"},
		replies: []string{
			"Искусство вдохновляет меня каждый день 🎨 Есть любимый художник?",
			"Недавно была на выставке современного искусства, до сих пор под впечатлением! А ты любишь музеи? 🖼️",
		},
	},
}

var genericReplies = []string{
	"Ой, я сейчас немного рассеяна... Повтори, пожалуйста? 💫",
	"Извини, отвлеклась на красивый вид за окном! О чём мы говорили? 😅",
	"Кажется, у меня небольшие технические неполадки... Но я скоро вернусь! ✨",
	"Интересно! Расскажи подробнее? 😊",
}

// ClassifyFallback returns the first keyword class found in text. Keywords
// padded with spaces only match whole words.
func ClassifyFallback(text string) FallbackClass {
	lower := " " + strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSpace(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, text) + " "
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.class
			}
		}
	}
	return ClassGeneric
}

// FallbackReply picks a canned reply for text. It depends only on the text and
// rng, never on stored session state.
func FallbackReply(text string, rng Chooser) string {
	class := ClassifyFallback(text)
	return pick(FallbackReplies(class), rng)
}

// FallbackReplies returns the reply pool for class.
func FallbackReplies(class FallbackClass) []string {
	for _, rule := range fallbackRules {
		if rule.class == class {
			return rule.replies
		}
	}
	return genericReplies
}

func pick(pool []string, rng Chooser) string {
	if len(pool) == 1 || rng == nil {
		return pool[0]
	}
	return pool[rng.IntN(len(pool))]
}
