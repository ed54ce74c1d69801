package tui

import "testing"

func TestTruncateText(t *testing.T) {
	tests := map[string]struct {
		text  string
		width int
		want  string
	}{
		"fits":       {"short", 10, "short"},
		"exact":      {"abcde", 5, "abcde"},
		"ellipsis":   {"abcdefghij", 6, "abc..."},
		"tiny width": {"abcdef", 2, "ab"},
		"zero width": {"abc", 0, ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := truncateText(tt.text, tt.width); got != tt.want {
				t.Errorf("truncateText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
