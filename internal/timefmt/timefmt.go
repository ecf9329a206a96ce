// Package timefmt renders session durations for display.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
)

type unit string

const (
	unitHours   unit = "hours"
	unitMinutes unit = "minutes"
	unitSeconds unit = "seconds"
)

// unitForms holds the one/few/many declension of each unit word.
var unitForms = map[unit][3]string{
	unitHours:   {"час", "часа", "часов"},
	unitMinutes: {"минута", "минуты", "минут"},
	unitSeconds: {"секунда", "секунды", "секунд"},
}

// trans declines unit words using the Russian cardinal plural rules.
var trans = mustRussianTranslator()

func mustRussianTranslator() ut.Translator {
	ruLocale := ru.New()
	uni := ut.New(ruLocale, ruLocale)
	t, _ := uni.GetTranslator(ruLocale.Locale())

	for key, forms := range unitForms {
		rules := []struct {
			rule locales.PluralRule
			word string
		}{
			{locales.PluralRuleOne, forms[0]},
			{locales.PluralRuleFew, forms[1]},
			{locales.PluralRuleMany, forms[2]},
			// Fractions only; integers never resolve to "other".
			{locales.PluralRuleOther, forms[2]},
		}
		for _, r := range rules {
			if err := t.AddCardinal(key, "{0} "+r.word, r.rule, false); err != nil {
				panic(fmt.Sprintf("timefmt: register %s: %v", key, err))
			}
		}
	}
	return t
}

func decline(n int, u unit) string {
	s, err := trans.C(u, float64(n), 0, strconv.Itoa(n))
	if err != nil {
		return strconv.Itoa(n) + " " + unitForms[u][2]
	}
	return s
}

// FormatVerbose renders seconds as a declined Russian phrase, e.g.
// 3661 -> "1 час 1 минута 1 секунда". Zero-valued units are omitted, except
// that seconds are shown when everything is zero. Negative input yields "".
func FormatVerbose(seconds int) string {
	if seconds < 0 {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, decline(h, unitHours))
	}
	if m > 0 {
		parts = append(parts, decline(m, unitMinutes))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, decline(s, unitSeconds))
	}
	return strings.Join(parts, " ")
}

// FormatClock renders seconds as zero-padded HH:MM:SS. Negative input yields "".
func FormatClock(seconds int) string {
	if seconds < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
