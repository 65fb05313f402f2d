package ingest

import (
	"testing"
	"time"
)

func TestWeekLabelFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"Automation messages sent_2025-06-302025-07-06.csv", "2025-06-30 a 2025-07-06"},
		{"sent_2025-01-062025-01-12.xlsx", "2025-01-06 a 2025-01-12"},
		{"/tmp/uploads/sent_2025-06-302025-07-06_abc123.csv", "2025-06-30 a 2025-07-06"},
	}
	for _, c := range cases {
		got := WeekLabelFromFilename(c.filename, time.Now())
		if string(got) != c.want {
			t.Errorf("WeekLabelFromFilename(%q) = %q, want %q", c.filename, got, c.want)
		}
	}
}

func TestWeekLabelFromFilename_Fallback(t *testing.T) {
	// 2025-07-02 is a Wednesday in ISO week 27.
	now := time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC)
	got := WeekLabelFromFilename("relatorio.csv", now)
	if string(got) != "Semana 27, 2025" {
		t.Errorf("fallback label = %q, want %q", got, "Semana 27, 2025")
	}
}
