package types

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2026, 3, 1, 12, 0, 0, 123456789, loc)

	got := Normalize(in)
	if got.Location() != time.UTC {
		t.Errorf("Location: got %v, want UTC", got.Location())
	}
	if got.Nanosecond() != 123000000 {
		t.Errorf("Nanosecond: got %d, want 123000000", got.Nanosecond())
	}
	if !got.Equal(time.Date(2026, 3, 1, 10, 0, 0, 123000000, time.UTC)) {
		t.Errorf("instant changed: %v", got)
	}
}

func TestEntityAge(t *testing.T) {
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := NewEntity(created)

	if got := e.Age(created.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age: got %v, want 90s", got)
	}
}
