package core

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTimestampJSONRoundTrip tests JSON marshaling and unmarshaling
func TestTimestampJSONRoundTrip(t *testing.T) {
	orig := NewTimestamp(time.Date(2025, 6, 23, 8, 30, 0, 0, time.UTC))

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var restored Timestamp
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !orig.Time().Equal(restored.Time()) {
		t.Errorf("Expected %s after round trip, got %s", orig, restored)
	}
}

// TestTimestampWeekday tests weekday extraction
func TestTimestampWeekday(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC))
	if ts.Weekday() != time.Monday {
		t.Errorf("Expected Monday, got %s", ts.Weekday())
	}
}

// TestTimestampOrdering tests Before and After
func TestTimestampOrdering(t *testing.T) {
	earlier := NewTimestamp(time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC))
	later := NewTimestamp(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	if !earlier.Before(later) {
		t.Error("Expected earlier.Before(later) to be true")
	}
	if !later.After(earlier) {
		t.Error("Expected later.After(earlier) to be true")
	}
	if earlier.IsZero() {
		t.Error("Expected non-zero timestamp")
	}
	if !(Timestamp{}).IsZero() {
		t.Error("Expected zero timestamp to be zero")
	}
}
