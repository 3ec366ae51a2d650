// Package normalizers tidies command help text written as indented raw
// string literals.
package normalizers

import (
	"strings"
)

const Indentation = `  `

// LongDesc removes surrounding blank lines and the indentation shared by
// every line of a long description.
func LongDesc(s string) string {
	return strings.Join(dedent(s), "\n")
}

// Examples dedents an examples block and indents each line by Indentation.
func Examples(s string) string {
	lines := dedent(s)
	if len(lines) == 0 {
		return ""
	}
	for i, line := range lines {
		if line != "" {
			lines[i] = Indentation + line
		}
	}
	return strings.Join(lines, "\n")
}

func dedent(s string) []string {
	s = strings.Trim(s, "\n")
	if strings.TrimSpace(s) == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	margin := -1
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		if indent := len(line) - len(trimmed); margin < 0 || indent < margin {
			margin = indent
		}
	}
	for i, line := range lines {
		if len(line) >= margin && strings.TrimSpace(line[:margin]) == "" {
			lines[i] = strings.TrimRight(line[margin:], " \t")
		} else {
			lines[i] = strings.TrimSpace(line)
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return lines
}
