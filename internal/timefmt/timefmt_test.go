package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVerbose(t *testing.T) {
	cases := map[int]string{
		-1:    "",
		0:     "0 секунд",
		1:     "1 секунда",
		2:     "2 секунды",
		5:     "5 секунд",
		11:    "11 секунд",
		21:    "21 секунда",
		22:    "22 секунды",
		59:    "59 секунд",
		60:    "1 минута",
		61:    "1 минута 1 секунда",
		125:   "2 минуты 5 секунд",
		720:   "12 минут",
		3600:  "1 час",
		3661:  "1 час 1 минута 1 секунда",
		7200:  "2 часа",
		7322:  "2 часа 2 минуты 2 секунды",
		18000: "5 часов",
		40271: "11 часов 11 минут 11 секунд",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatVerbose(in), "seconds=%d", in)
	}
}

func TestDecline_TeensUseManyForm(t *testing.T) {
	for _, n := range []int{11, 12, 13, 14, 111, 112} {
		assert.Equal(t, unitForms[unitMinutes][2], declinedWord(n, unitMinutes), "n=%d", n)
	}
	for _, n := range []int{1, 31, 101} {
		assert.Equal(t, unitForms[unitMinutes][0], declinedWord(n, unitMinutes), "n=%d", n)
	}
	for _, n := range []int{2, 3, 4, 23, 104} {
		assert.Equal(t, unitForms[unitMinutes][1], declinedWord(n, unitMinutes), "n=%d", n)
	}
}

func declinedWord(n int, u unit) string {
	s := decline(n, u)
	for i := range s {
		if s[i] == ' ' {
			return s[i+1:]
		}
	}
	return s
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:59", FormatClock(59))
	assert.Equal(t, "01:00:00", FormatClock(3600))
	assert.Equal(t, "02:00:00", FormatClock(7200))
	assert.Equal(t, "00:29:59", FormatClock(1799))
	assert.Equal(t, "", FormatClock(-5))
}
