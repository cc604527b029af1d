package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventoscl/crawler/internal/events"
)

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func dateOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSpanishDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "full date with weekday prefix",
			text: "Viernes, 15 de marzo de 2026",
			want: dateOf(2026, time.March, 15),
		},
		{
			name: "abbreviated month",
			text: "15 mar 2026",
			want: dateOf(2026, time.March, 15),
		},
		{
			name: "missing year in the past rolls forward",
			text: "15 de marzo",
			want: dateOf(2027, time.March, 15),
		},
		{
			name: "missing year still upcoming keeps hint",
			text: "10 de octubre",
			want: dateOf(2026, time.October, 10),
		},
		{
			name: "slash date with two digit year",
			text: "15/03/26",
			want: dateOf(2026, time.March, 15),
		},
		{
			name: "dash date with four digit year",
			text: "15-03-2027",
			want: dateOf(2027, time.March, 15),
		},
		{
			name: "iso date",
			text: "2026-12-01",
			want: dateOf(2026, time.December, 1),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SpanishDate(tc.text, testNow.Year(), testNow)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestSpanishDateUnparseable(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SpanishDate("", testNow.Year(), testNow))
	assert.Nil(t, SpanishDate("fecha por confirmar", testNow.Year(), testNow))
	assert.Nil(t, SpanishDate("15 de brumario", testNow.Year(), testNow))
}

func TestDateRangeSpan(t *testing.T) {
	t.Parallel()

	got := DateRange("12 al 15 de marzo", testNow)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	// March is already past in the reference year, so the whole span moves
	// to the next one.
	assert.Equal(t, dateOf(2027, time.March, 12), *got.Start)
	assert.Equal(t, dateOf(2027, time.March, 15), *got.End)
	assert.Empty(t, got.Occurrences)
}

func TestDateRangeSpanAcrossMonthsWithYear(t *testing.T) {
	t.Parallel()

	got := DateRange("12 de marzo al 15 de abril 2027", testNow)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, dateOf(2027, time.March, 12), *got.Start)
	assert.Equal(t, dateOf(2027, time.April, 15), *got.End)
}

func TestDateRangeMultipleDates(t *testing.T) {
	t.Parallel()

	got := DateRange("5, 12 y 19 de abril 2027", testNow)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, dateOf(2027, time.April, 5), *got.Start)
	assert.Equal(t, dateOf(2027, time.April, 19), *got.End)
	assert.Equal(t, []events.Occurrence{
		{Date: "2027-04-05"},
		{Date: "2027-04-12"},
		{Date: "2027-04-19"},
	}, got.Occurrences)
}

func TestDateRangeTwoDates(t *testing.T) {
	t.Parallel()

	got := DateRange("5 y 12 de abril 2027", testNow)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, dateOf(2027, time.April, 5), *got.Start)
	assert.Equal(t, dateOf(2027, time.April, 12), *got.End)
	assert.Len(t, got.Occurrences, 2)
}

func TestDateRangeSingleDate(t *testing.T) {
	t.Parallel()

	got := DateRange("Sábado, 20 de diciembre de 2026", testNow)
	require.NotNil(t, got.Start)
	assert.Equal(t, dateOf(2026, time.December, 20), *got.Start)
	assert.Nil(t, got.End)
	assert.Empty(t, got.Occurrences)
}

func TestDateRangeEmpty(t *testing.T) {
	t.Parallel()

	got := DateRange("  ", testNow)
	assert.Nil(t, got.Start)
	assert.Nil(t, got.End)
	assert.Empty(t, got.Occurrences)
}

func TestTimeOfDay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{text: "21:00 hrs", want: "21:00"},
		{text: "8:30 pm", want: "20:30"},
		{text: "12:00 am", want: "00:00"},
		{text: "Desde las 19.30", want: "19:30"},
		{text: "9:00 AM", want: "09:00"},
		{text: "horario por confirmar", want: ""},
		{text: "", want: ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, TimeOfDay(tc.text), "text %q", tc.text)
	}
}
