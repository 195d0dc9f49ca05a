package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "  ", want: ""},
		{name: "plain sentence unchanged", input: "From $10/lesson.", want: "From $10/lesson."},
		{name: "bold and italic", input: "Lessons are **twice** a *week*.", want: "Lessons are twice a week."},
		{name: "inline code", input: "Use `/start`", want: "Use /start"},
		{name: "link keeps text", input: "See [our site](https://example.com).", want: "See our site."},
		{name: "entities unescaped", input: "Kids & parents <3", want: "Kids & parents <3"},
		{name: "heading", input: "# Prices\nFrom $10.", want: "Prices\n\nFrom $10."},
	}

	p := NewTelegramPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.PlainText(tt.input))
		})
	}
}

func TestPlainTextList(t *testing.T) {
	t.Parallel()

	got := NewTelegramPolicy().PlainText("Groups:\n\n- Juniors\n- Seniors")
	assert.Contains(t, got, "• Juniors")
	assert.Contains(t, got, "• Seniors")
	assert.NotContains(t, got, "<")
}
