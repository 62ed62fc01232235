package storage

import (
	"testing"
	"time"
)

func TestUTC(t *testing.T) {
	t.Run("converts offset timestamps to UTC", func(t *testing.T) {
		saoPaulo := time.FixedZone("BRT", -3*60*60)
		src := time.Date(2026, 3, 1, 9, 30, 0, 0, saoPaulo)

		var got time.Time
		if err := UTC(&got).Scan(src); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Location() != time.UTC {
			t.Errorf("expected UTC location, got %s", got.Location())
		}
		if !got.Equal(src) || got.Hour() != 12 {
			t.Errorf("expected 12:30 UTC, got %s", got)
		}
	})

	t.Run("null leaves the zero time", func(t *testing.T) {
		got := time.Now()
		if err := UTC(&got).Scan(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.IsZero() {
			t.Errorf("expected zero time, got %s", got)
		}
	})

	t.Run("rejects non-time values", func(t *testing.T) {
		var got time.Time
		if err := UTC(&got).Scan("2026-03-01"); err == nil {
			t.Error("expected error for string source")
		}
	})
}
