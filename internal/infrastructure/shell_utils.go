package infrastructure

import "strings"

const shellSpecialChars = " \t'\"$`\\!*?[](){}|;<>&~#%\n\r"

// ShellEscape escapes a string for safe display in a logged command line.
// Display only - exec.Command passes arguments without shell interpretation.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}

	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString(`'"'"'`)
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// ShellEscapeCommand renders a binary and its arguments as a copy-pasteable
// command line for the attempt logs.
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
