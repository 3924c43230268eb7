package tally

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTallyDate(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"wire passthrough", "20240315", "20240315"},
		{"padded wire", "  20240315 ", "20240315"},
		{"iso", "2024-03-15", "20240315"},
		{"day first slash", "15/03/2024", "20240315"},
		{"day first dash", "15-03-2024", "20240315"},
		{"single digits", "5/3/2024", "20240305"},
		{"generic layout", "2024/03/15", "20240315"},
		{"time", time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC), "20240315"},
		{"time pointer", ptr(time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)), "20231201"},
		{"number", 20240315, "20240315"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToTallyDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := ToTallyDate(got)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestToTallyDateGenericOrderIndependent(t *testing.T) {
	inputs := []string{"2024/03/15", "2023/12/01"}
	want := map[string]string{"2024/03/15": "20240315", "2023/12/01": "20231201"}
	for _, order := range [][]string{inputs, {inputs[1], inputs[0], inputs[1]}} {
		for _, in := range order {
			got, err := ToTallyDate(in)
			require.NoError(t, err, in)
			assert.Equal(t, want[in], got, in)
		}
	}
}

func TestToTallyDateErrors(t *testing.T) {
	for _, input := range []any{"", "   ", nil, "not a date", time.Time{}, (*time.Time)(nil)} {
		_, err := ToTallyDate(input)
		var derr *DateParseError
		assert.True(t, errors.As(err, &derr), "input %v", input)
	}
}

func TestTallyDateOrDefault(t *testing.T) {
	def := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "20240401", TallyDateOrDefault("bogus", def))
	assert.Equal(t, "20240315", TallyDateOrDefault("2024-03-15", def))
}

func TestFromTallyDate(t *testing.T) {
	got, err := FromTallyDate("20240315")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "2024031", "202403150", "2024AB15"} {
		_, err := FromTallyDate(bad)
		assert.ErrorIs(t, err, ErrInvalidTallyDate, bad)
	}
}

func ptr[T any](v T) *T {
	return &v
}
