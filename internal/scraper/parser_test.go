package scraper

import (
	"testing"
	"time"
)

func TestDateParser(t *testing.T) {
	parser := NewDateParser()
	ref := time.Date(2025, 3, 14, 22, 15, 0, 0, time.UTC)

	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2025-03-10", "2025-03-10", false},
		{"2025-03-10T08:00:00Z", "2025-03-10", false},
		{"Just now", "2025-03-14", false},
		{"today", "2025-03-14", false},
		{"Yesterday", "2025-03-13", false},
		{"30 minutes ago", "2025-03-14", false},
		{"23 hours ago", "2025-03-13", false},
		{"4 days ago", "2025-03-10", false},
		{"Reposted 2 weeks ago", "2025-02-28", false},
		{"Posted 1 month ago", "2025-02-14", false},
		{"1 mo ago", "2025-02-14", false},
		{"30+ days ago", "2025-02-12", false},
		{"2 years ago", "2023-03-14", false},
		{"Mar 3, 2025", "2025-03-03", false},
		{"", "", true},
		{"Be an early applicant", "", true},
	}

	for _, tt := range tests {
		result, err := parser.Parse(tt.input, ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && result.Format(time.DateOnly) != tt.expected {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, result.Format(time.DateOnly), tt.expected)
		}
	}
}

func TestISODayUnparsable(t *testing.T) {
	if got := NewDateParser().ISODay("Actively recruiting", time.Now()); got != "" {
		t.Errorf("ISODay() = %q, want empty", got)
	}
}
