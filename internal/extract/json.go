package extract

// extractJSON pulls a JSON object out of a response that may be wrapped in
// markdown or explanatory prose. It returns the slice from the first opening
// brace through its balanced closing brace, or "" when none exists.
func extractJSON(text string) string {
	start := findJSONStart(text)
	if start < 0 {
		return ""
	}
	end := findJSONEnd(text, start)
	if end < 0 {
		return ""
	}
	return text[start : end+1]
}

func findJSONStart(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(text string, start int) int {
	// Find matching closing brace
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
