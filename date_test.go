package fatnav

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "dos epoch",
			input: 1<<5 | 1,
			want:  time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "last representable year",
			input: 127<<9 | 12<<5 | 31,
			want:  time.Date(2107, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "zero day",
			input: 40<<9 | 3<<5,
			want:  time.Time{},
		},
		{
			name:  "zero month",
			input: 40<<9 | 3,
			want:  time.Time{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); !got.Equal(tt.want) {
				t.Errorf("ParseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input uint16
		want  time.Time
	}{
		{
			name:  "midnight is the zero time",
			input: 0,
			want:  time.Time{},
		},
		{
			name:  "two second resolution",
			input: 13<<11 | 45<<5 | 29,
			want:  time.Date(1, 1, 1, 13, 45, 58, 0, time.UTC),
		},
		{
			name:  "overflow is clamped",
			input: 31<<11 | 63<<5 | 31,
			want:  time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime() = %v, want %v", got, tt.want)
			}
			if got.IsZero() != tt.want.IsZero() {
				t.Errorf("ParseTime().IsZero() = %v, want %v", got.IsZero(), tt.want.IsZero())
			}
		})
	}
}
