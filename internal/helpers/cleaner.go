package helpers

import "strings"

// CleanCompletion trims a model reply and unwraps it when the whole reply is a
// single fenced block (```markdown ... ``` or ~~~ ... ~~~). Fenced blocks
// inside a longer reply are left alone.
func CleanCompletion(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF"))
	if inner, ok := unwrapFence(s); ok {
		return strings.TrimSpace(inner)
	}
	return s
}

func unwrapFence(s string) (string, bool) {
	for _, fence := range []string{"```", "~~~"} {
		if !strings.HasPrefix(s, fence) || !strings.HasSuffix(s, fence) || len(s) < 2*len(fence) {
			continue
		}
		body := s[len(fence) : len(s)-len(fence)]
		nl := strings.IndexByte(body, '\n')
		if nl == -1 {
			return "", false
		}
		// the info string may only name a language, e.g. "markdown"
		if info := strings.TrimSpace(body[:nl]); strings.ContainsAny(info, " \t") {
			return "", false
		}
		inner := body[nl+1:]
		if strings.Contains(inner, fence) {
			return "", false
		}
		return inner, true
	}
	return "", false
}
