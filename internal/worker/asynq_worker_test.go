package worker

import (
	"testing"
	"time"
)

func TestNextBackupTimeSameDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 30, 0, 0, time.UTC)
	next := nextBackupTime(now, 3)
	want := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next backup want %v got %v", want, next)
	}
}

func TestNextBackupTimeRollsToTomorrow(t *testing.T) {
	now := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	next := nextBackupTime(now, 3)
	want := time.Date(2026, 3, 11, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next backup want %v got %v", want, next)
	}
}

func TestNextBackupTimeInvalidHourFallsBack(t *testing.T) {
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	next := nextBackupTime(now, 99)
	if next.Hour() != 3 {
		t.Fatalf("fallback hour want 3 got %d", next.Hour())
	}
}
