package lesson

import "strings"

// StripFences removes a markdown code fence wrapping the whole response.
//
// The text is trimmed first. Fences are removed only when the first line is
// three or more backticks with an optional language tag and the last line is
// the same run of backticks; the body between them is trimmed again.
// Anything else, including inline backtick markup inside the body, is
// returned as-is.
func StripFences(s string) string {
	text := strings.TrimSpace(s)

	n := 0
	for n < len(text) && text[n] == '`' {
		n++
	}
	if n < 3 {
		return text
	}

	nl := strings.IndexByte(text, '\n')
	if nl < 0 {
		return text
	}
	tag := strings.TrimSpace(text[n:nl])
	if strings.ContainsAny(tag, "` \t") {
		return text
	}

	fence := text[:n]
	body := text[nl+1:]
	if !strings.HasSuffix(body, fence) {
		return text
	}
	cut := len(body) - n
	if cut > 0 && body[cut-1] == '`' {
		// closing run is longer than the opening fence
		return text
	}
	inner := body[:cut]
	if cut > 0 && !strings.HasSuffix(inner, "\n") {
		return text
	}
	// Blank lines hugging either fence are not part of the code.
	return strings.TrimSpace(inner)
}
