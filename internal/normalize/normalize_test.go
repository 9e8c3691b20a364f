package normalize

import (
	"testing"
)

func TestText(t *testing.T) {
	n := NewNormalizer(Options{TrimNBSP: true, CollapseSpaces: true})

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"   ", ""},
		{"\n  Senior Engineer \n", "Senior Engineer"},
		{"Acme  Corp", "Acme Corp"},
		{"Berlin,\n        Germany", "Berlin, Germany"},
	}

	for _, tt := range tests {
		if got := n.Text(tt.input); got != tt.expected {
			t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestTextTrimOnly(t *testing.T) {
	n := NewNormalizer(Options{})

	if got := n.Text("  a   b  "); got != "a   b" {
		t.Errorf("Text without collapsing = %q, want %q", got, "a   b")
	}
}

func TestJobURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"https://linkedin.com/jobs/view/123", "https://linkedin.com/jobs/view/123"},
		{"  https://www.linkedin.com/jobs/view/123/?refId=abc&trackingId=xyz#top ", "https://www.linkedin.com/jobs/view/123/"},
		{"https://www.linkedin.com/jobs/search/?currentJobId=42&keywords=go", "https://www.linkedin.com/jobs/search/?currentJobId=42"},
		{"https://example.com/careers/7?utm_source=x&id=7", "https://example.com/careers/7?id=7"},
		{"https://example.com/page#anchor", "https://example.com/page"},
	}

	for _, tt := range tests {
		if got := JobURL(tt.input); got != tt.expected {
			t.Errorf("JobURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
