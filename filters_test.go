package main

import (
	"strings"
	"testing"
)

func TestStripReasoning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no spans", "  plain text  ", "plain text"},
		{"single span", "<think>reasoning</think>\n\nContent here", "Content here"},
		{"multiple spans", "Before <think>one</think> middle <think>two</think> after", "Before  middle  after"},
		{"adjacent spans", "<think>a</think><think>b</think>Result", "Result"},
		{"multi-line span", "<think>\nline one\nline two\n</think>\n## Heading", "## Heading"},
		{"only reasoning", "<think>nothing else</think>", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripReasoning(tt.input)
			if result != tt.expected {
				t.Errorf("StripReasoning() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestApplyFilters(t *testing.T) {
	filters := NewContentFilters()

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "markdown passes through",
			input:    "## Shipping\n\nFast delivery.",
			contains: []string{"## Shipping", "Fast delivery."},
		},
		{
			name:     "reasoning removed",
			input:    "<think>draft outline</think>## Shipping",
			contains: []string{"## Shipping"},
			excludes: []string{"draft outline", "<think>"},
		},
		{
			name:     "fence unwrapped",
			input:    "```markdown\n## Shipping\nFast delivery.\n```",
			contains: []string{"## Shipping", "Fast delivery."},
			excludes: []string{"```"},
		},
		{
			name:     "html converted",
			input:    "<h2>Shipping</h2><p>Fast delivery.</p>",
			contains: []string{"## Shipping", "Fast delivery."},
			excludes: []string{"<h2>", "<p>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ApplyFilters(filters, tt.input)
			if err != nil {
				t.Fatalf("ApplyFilters() error = %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(result, s) {
					t.Errorf("result %q missing %q", result, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(result, s) {
					t.Errorf("result %q should not contain %q", result, s)
				}
			}
			if result != strings.TrimSpace(result) {
				t.Errorf("result not trimmed: %q", result)
			}
		})
	}
}

func TestFenceFilterCanHandle(t *testing.T) {
	f := &FenceFilter{}

	if !f.CanHandle("```\n## Title\n```") {
		t.Error("expected bare fence to be handled")
	}
	if f.CanHandle("## Title\n```go\ncode\n```\nmore") {
		t.Error("inline code block should not be treated as a wrapping fence")
	}
}

func TestFenceFilterSeparateBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two bare blocks", "```\nfirst block\n```\n## Middle\n```\nsecond block\n```"},
		{"markdown then bare block", "```markdown\n## Intro\n```\nBody text.\n```\nlast\n```"},
	}

	f := &FenceFilter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if f.CanHandle(tt.input) {
				t.Error("separate code blocks should not be treated as one wrapping fence")
			}
			result, err := ApplyFilters(NewContentFilters(), tt.input)
			if err != nil {
				t.Fatalf("ApplyFilters() error = %v", err)
			}
			if result != tt.input {
				t.Errorf("ApplyFilters() = %q, want input unchanged", result)
			}
		})
	}
}
