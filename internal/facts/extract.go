// Package facts pulls simple user facts out of a message with keyword
// heuristics. Extraction is pure; callers decide what to store.
package facts

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Facts are the candidate facts found in one message.
type Facts struct {
	Name      string
	Interests []string
	Mood      string
}

// nameTriggers are token sequences after which a name is expected.
var nameTriggers = [][]string{
	{"зовут"},
	{"имя"},
	{"называй", "меня"},
	{"my", "name", "is"},
	{"call", "me"},
}

type interestRule struct {
	label string
	stems []string
}

// interestRules is ordered; labels are reported in this order.
var interestRules = []interestRule{
	{"музыка", []string{"музык", "гитар", "песн", "концерт", "music", "guitar"}},
	{"путешествия", []string{"путешеств", "поездк", "travel"}},
	{"искусство", []string{"искусств", "живопис", "рисова", "рисую", "картин", "выставк"}},
	{"фотография", []string{"фотограф", "фотка", "фоткать", "photo"}},
	{"кулинария", []string{"кулинар", "рецепт", "готовить", "готовлю", "выпечк"}},
	{"книги", []string{"книг", "читать", "читаю", "романы"}},
	{"кино", []string{"фильм", "кино", "сериал", "movie"}},
	{"спорт", []string{"спорт", "футбол", "трениров", "бегаю", "йога"}},
}

var moodRules = []struct {
	mood  string
	stems []string
}{
	{"sad", []string{"груст", "мне плохо", "устал", "тоскл", "одиноко"}},
	{"happy", []string{"отлично", "радост", "рада ", "рад ", "счастлив", "супер", "классно"}},
}

// Extract returns every fact the heuristics recognise in text.
func Extract(text string) Facts {
	return Facts{
		Name:      ExtractName(text),
		Interests: ExtractInterests(text),
		Mood:      ExtractMood(text),
	}
}

// ExtractName returns the first acceptable name that follows a trigger.
func ExtractName(text string) string {
	tokens := strings.Fields(text)
	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		normalized[i] = strings.ToLower(trimPunct(tok))
	}

	for i := range tokens {
		for _, trigger := range nameTriggers {
			end := i + len(trigger)
			if end >= len(tokens) || !hasPrefixTokens(normalized[i:], trigger) {
				continue
			}
			if name := trimPunct(tokens[end]); validName(name) {
				return name
			}
		}
	}
	return ""
}

// ExtractInterests returns the interest labels mentioned in text, without
// duplicates, in rule order.
func ExtractInterests(text string) []string {
	lower := strings.ToLower(text)
	var labels []string
	for _, rule := range interestRules {
		if containsAny(lower, rule.stems) {
			labels = append(labels, rule.label)
		}
	}
	return labels
}

// ExtractMood returns "sad", "happy" or "" when nothing matches.
func ExtractMood(text string) string {
	lower := strings.ToLower(text) + " "
	for _, rule := range moodRules {
		if containsAny(lower, rule.stems) {
			return rule.mood
		}
	}
	return ""
}

// MergeInterests appends labels missing from existing, keeping existing order.
func MergeInterests(existing, found []string) ([]string, bool) {
	merged := append([]string{}, existing...)
	changed := false
	for _, label := range found {
		if contains(merged, label) {
			continue
		}
		merged = append(merged, label)
		changed = true
	}
	return merged, changed
}

func validName(name string) bool {
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	for i, r := range name {
		if !unicode.IsLetter(r) {
			return false
		}
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func hasPrefixTokens(tokens, prefix []string) bool {
	if len(tokens) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if tokens[i] != p {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(items []string, item string) bool {
	for _, s := range items {
		if s == item {
			return true
		}
	}
	return false
}
