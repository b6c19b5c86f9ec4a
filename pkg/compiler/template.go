package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// vecFmt replaces every {0}, {1}, {2}, … placeholder in format with the
// corresponding entry of args. `{` and `}` are escaped with a leading `\`.
// Grounded on original_source/src/util.rs::vec_fmt (its doctest is the
// basis for the test in template_test.go).
func vecFmt(format string, args []string) (string, error) {
	var b strings.Builder
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch ch {
		case '{':
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			if j >= len(runes) {
				return "", fmt.Errorf("vecFmt: unclosed `{` in template %q", format)
			}
			digits := string(runes[i+1 : j])
			idx, err := strconv.Atoi(digits)
			if err != nil {
				return "", fmt.Errorf("vecFmt: placeholder %q is not a valid index: %w", digits, err)
			}
			if idx < 0 || idx >= len(args) {
				return "", fmt.Errorf("vecFmt: placeholder {%d} out of range (%d args)", idx, len(args))
			}
			b.WriteString(args[idx])
			i = j
		case '}':
			return "", fmt.Errorf("vecFmt: dangling `}` in template %q (escape it as `\\}`)", format)
		case '\\':
			if i+1 >= len(runes) {
				return "", fmt.Errorf("vecFmt: dangling `\\` at end of template %q", format)
			}
			b.WriteRune(runes[i+1])
			i++
		default:
			b.WriteRune(ch)
		}
	}
	return b.String(), nil
}
