package runner

import "strings"

// ExtractDiagnostic picks a concise error message out of a failed tool's
// output. Stdout is preferred when non-empty, stderr otherwise. TeX engines
// mark the start of an error block with '!', so when the chosen text contains
// one the message is truncated to start there and keeps only the contiguous
// run of non-blank lines that follows; everything before the marker is the
// verbose log preamble. Text without a marker is returned unchanged.
func ExtractDiagnostic(stdout, stderr string) string {
	text := stdout
	if text == "" {
		text = stderr
	}

	idx := strings.IndexByte(text, '!')
	if idx < 0 {
		return text
	}

	var block []string
	for _, line := range strings.Split(text[idx:], "\n") {
		if strings.TrimSpace(line) == "" {
			break
		}
		block = append(block, line)
	}
	return strings.Join(block, "\n")
}
