// Package stacktrace trims runtime stacks down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line> <func>" for every
// frame under an internal/ directory, innermost first. Runtime and
// third-party frames are dropped.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for i := 1; i < len(lines); i++ {
		loc := strings.TrimSpace(lines[i])
		idx := strings.Index(loc, "/internal/")
		// Standard library packages such as internal/poll also live under internal/.
		if idx == -1 || !strings.Contains(loc, ".go:") || !strings.Contains(lines[i-1], "/internal/") {
			continue
		}
		loc, _, _ = strings.Cut(loc[idx+1:], " ")

		paths = append(paths, loc+" "+funcName(lines[i-1]))
	}

	return paths
}

// funcName turns "github.com/x/internal/auth.(*H).Send(0x1, ...)" into "auth.(*H).Send".
func funcName(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.LastIndex(line, "("); i > 0 && strings.HasSuffix(line, ")") {
		line = line[:i]
	}
	if i := strings.LastIndex(line, "/"); i >= 0 {
		line = line[i+1:]
	}
	return line
}
