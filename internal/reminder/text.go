package reminder

import (
	"fmt"

	"github.com/rvosen/mealbell/internal/model"
)

// Text is a resolved title/body pair, opaque to the engine.
type Text struct {
	Title string
	Body  string
}

type textEntry struct {
	title string
	body  string
}

var intervalTexts = map[string]textEntry{
	model.LangEnglish: {"Meal reminder", "Last meal was %d hours ago"},
	model.LangGerman:  {"Essenserinnerung", "Letzte Mahlzeit vor %d Stunden"},
	model.LangSpanish: {"Recordatorio de comida", "La última comida fue hace %d horas"},
}

var dailyTexts = map[string]textEntry{
	model.LangEnglish: {"Don't forget to eat", "Track your meals to keep your timer accurate"},
	model.LangGerman:  {"Vergiss nicht zu essen", "Trage deine Mahlzeiten ein, damit dein Timer stimmt"},
	model.LangSpanish: {"No olvides comer", "Registra tus comidas para mantener tu temporizador al día"},
}

// ResolveInterval returns the localized interval-reminder text with the
// elapsed hour count interpolated. Unknown languages fall back to English.
func ResolveInterval(language string, hoursAgo int) Text {
	entry, ok := intervalTexts[language]
	if !ok {
		entry = intervalTexts[model.LangEnglish]
	}
	return Text{Title: entry.title, Body: fmt.Sprintf(entry.body, hoursAgo)}
}

// ResolveDaily returns the localized daily-reminder text. Unknown
// languages fall back to English.
func ResolveDaily(language string) Text {
	entry, ok := dailyTexts[language]
	if !ok {
		entry = dailyTexts[model.LangEnglish]
	}
	return Text{Title: entry.title, Body: entry.body}
}
