package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseScheduleDate(t *testing.T) {
	ref := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want string
	}{
		{in: "2026-10-15", want: "2026-10-15"},
		{in: " 2026-01-02 ", want: "2026-01-02"},
		{in: "today", want: "2026-10-15"},
		{in: "tomorrow", want: "2026-10-16"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScheduleDate(tt.in, ref)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("empty", func(t *testing.T) {
		_, err := ParseScheduleDate("  ", ref)
		require.Error(t, err)
	})
}

func TestValidateCopyDates(t *testing.T) {
	require.NoError(t, ValidateCopyDates("2026-10-15", "2026-10-16"))
	require.Error(t, ValidateCopyDates("2026-10-15", "2026-10-15"))
}
