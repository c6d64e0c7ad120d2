package utils

import (
	"testing"
	"time"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewManualClock(start)

	if !clock.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, clock.Now())
	}

	clock.Advance(16 * time.Millisecond)
	if got := clock.Now().Sub(start); got != 16*time.Millisecond {
		t.Errorf("Expected 16ms advance, got %v", got)
	}

	later := start.Add(time.Hour)
	clock.Set(later)
	if !clock.Now().Equal(later) {
		t.Errorf("Expected %v after Set, got %v", later, clock.Now())
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	if got.Before(before) {
		t.Errorf("SystemClock returned a time before the call: %v < %v", got, before)
	}
}

func TestDurationConversions(t *testing.T) {
	if d := MsToDuration(1.5); d != 1500*time.Microsecond {
		t.Errorf("MsToDuration(1.5) = %v", d)
	}
	if ms := DurationToMs(250 * time.Millisecond); ms != 250 {
		t.Errorf("DurationToMs(250ms) = %f", ms)
	}
	if s := Seconds(-time.Second); s != 0 {
		t.Errorf("Seconds(-1s) = %f, expected 0", s)
	}
	if s := Seconds(500 * time.Millisecond); s != 0.5 {
		t.Errorf("Seconds(500ms) = %f, expected 0.5", s)
	}
}
