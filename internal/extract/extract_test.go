package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		capacity *int
		time     string
		features []string
	}{
		{
			name:     "headcount, feature and clock time",
			text:     "I need a room for 6 people with a projector at 14:00",
			capacity: intPtr(6),
			time:     "14:00",
			features: []string{"projector"},
		},
		{
			name:     "pax without time",
			text:     "Meeting for 10 pax with wifi",
			capacity: intPtr(10),
			features: []string{"wifi"},
		},
		{
			name:     "for N with hour and meridiem",
			text:     "room for 2 at 9am",
			capacity: intPtr(2),
			time:     "09:00",
			features: []string{},
		},
		{
			name:     "features only",
			text:     "Conference room with tv and whiteboard",
			features: []string{"whiteboard", "tv"},
		},
		{
			name:     "users",
			text:     "Need a spot for 5 users",
			capacity: intPtr(5),
			features: []string{},
		},
		{
			name:     "spelled-out headcount",
			text:     "I need a place for five peeps with projector pls",
			capacity: intPtr(5),
			features: []string{"projector"},
		},
		{
			name:     "aliases",
			text:     "room for 6 with wheel chair access and a hearing loop",
			capacity: intPtr(6),
			features: []string{"wheelchair_access", "hearing_loop"},
		},
		{
			name:     "afternoon bucket",
			text:     "room for 3 in afternoon with monitor",
			capacity: intPtr(3),
			time:     "14:00",
			features: []string{"monitor"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			assert.Equal(t, tt.capacity, got.Capacity)
			assert.Equal(t, tt.time, got.Time)
			require.NotNil(t, got.Requirements)
			assert.Equal(t, tt.features, got.Requirements)
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	for _, text := range []string{"", "   ", "hello there", "!!??"} {
		got := Extract(text)
		assert.Nil(t, got.Capacity, text)
		assert.Empty(t, got.Time, text)
		assert.NotNil(t, got.Requirements, text)
		assert.Empty(t, got.Requirements, text)
	}
}

func TestExtract_Time(t *testing.T) {
	cases := map[string]string{
		"at 14:00":             "14:00",
		"at 2:30pm":            "14:30",
		"at 2.30 pm":           "14:30",
		"at 10:30":             "10:30",
		"at 12:15 am":          "00:15",
		"at 12:15 pm":          "12:15",
		"at 2pm":               "14:00",
		"at 2 PM":              "14:00",
		"at 12am":              "00:00",
		"at 12pm":              "12:00",
		"at 11 a.m.":           "11:00",
		"from 1:30 until 3 pm": "13:30",
		"in the morning":       "10:00",
		"this evening":         "18:00",
		"at 25:00 or 3pm":      "15:00",
		"at ten thirty":        "",
		"at two pm":            "14:00",
		"tomorrow":             "",
		"meet at14:00 for 3":   "14:00",
		"call at3pm":           "15:00",
		"room 123:00":          "",
	}
	for text, want := range cases {
		assert.Equal(t, want, Extract(text).Time, "text %q", text)
	}
}

func TestExtract_Capacity(t *testing.T) {
	cases := map[string]*int{
		"6 people":                intPtr(6),
		"twelve attendees":        intPtr(12),
		"for twenty-five persons": intPtr(25),
		"room for 8":              intPtr(8),
		"for 4 at 5pm":            intPtr(4),
		"3 seats for 9":           intPtr(3),
		"book for 10:30":          nil,
		"book for 2 pm":           nil,
		"book for 2pm":            nil,
		"book for 10:30 for 4":    intPtr(4),
		"a quiet room":            nil,
	}
	for text, want := range cases {
		assert.Equal(t, want, Extract(text).Capacity, "text %q", text)
	}
}

func TestExtract_FeatureSubstringMatch(t *testing.T) {
	assert.Equal(t, []string{"wheelchair_access"}, Extract("wheelchairs welcome").Requirements)
	assert.Equal(t, []string{"projector"}, Extract("two PROJECTORS please").Requirements)
	assert.Equal(t, []string{"wifi"}, Extract("wifi, Wi-Fi and WIFI").Requirements)
}

func TestExtract_Idempotent(t *testing.T) {
	texts := []string{
		"I need a room for six people with a projector at 2pm",
		"Meeting for ten pax with wifi tomorrow evening",
		"Book a space for twenty-one attendees at 10.30 am",
		"room for 16 at 4pm with wheelchair access",
	}
	for _, text := range texts {
		assert.Equal(t, Extract(text), Extract(Normalize(text)), text)
	}
}

func TestVocabulary_ReturnsCopy(t *testing.T) {
	v := Vocabulary()
	require.NotEmpty(t, v)
	v[0].Tag = "mutated"
	v[0].Aliases[0] = "mutated"

	assert.Equal(t, "projector", Vocabulary()[0].Tag)
	assert.Equal(t, "projector", Vocabulary()[0].Aliases[0])
}
