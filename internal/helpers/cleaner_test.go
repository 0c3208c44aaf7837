package helpers

import "testing"

func TestCleanCompletion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  ## Travel Plan Overview\nKyoto  ", "## Travel Plan Overview\nKyoto"},
		{"markdown fence", "```markdown\n## Travel Plan Overview\nKyoto\n```", "## Travel Plan Overview\nKyoto"},
		{"bare fence", "```\nhello\n```", "hello"},
		{"tilde fence", "~~~md\nhello\n~~~", "hello"},
		{"bom", "\uFEFF hello", "hello"},
		{"inner fence kept", "Intro\n```\ncode\n```", "Intro\n```\ncode\n```"},
		{"two blocks kept", "```\na\n```\n\n```\nb\n```", "```\na\n```\n\n```\nb\n```"},
		{"single line fence kept", "```x```", "```x```"},
	}
	for _, tt := range tests {
		if got := CleanCompletion(tt.in); got != tt.want {
			t.Fatalf("%s: CleanCompletion(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}
