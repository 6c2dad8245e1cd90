package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC3339 with Z",
			input: "2024-06-11T14:00:00Z",
			want:  time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC3339 with offset",
			input: "2024-06-11T14:00:00+02:00",
			want:  time.Date(2024, 6, 11, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "naive datetime",
			input: "2024-06-11T14:00:00",
			want:  time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "naive without seconds",
			input: "2024-06-11T14:00",
			want:  time.Date(2024, 6, 11, 14, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2024-06-11",
			want:  time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "next friday-ish",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}
