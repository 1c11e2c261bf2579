package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"simple", "simple"},
		{"/usr/bin/yt-dlp", "/usr/bin/yt-dlp"},
		{"has space", "'has space'"},
		{"semi;colon", "'semi;colon'"},
		{"dollar$var", "'dollar$var'"},
		{"single'quote", `'single'"'"'quote'`},
		{"https://youtu.be/abc?x=1&y=2", "'https://youtu.be/abc?x=1&y=2'"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ShellEscape(tt.in), "input %q", tt.in)
	}
}

func TestShellEscapeCommand(t *testing.T) {
	cmd := ShellEscapeCommand("yt-dlp", "-f", "best", "https://youtu.be/abc?x=1")
	assert.Equal(t, "yt-dlp -f best 'https://youtu.be/abc?x=1'", cmd)
}
