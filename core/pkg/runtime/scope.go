package runtime

// toolMatchesScope reports whether toolName matches at least one glob in
// patterns.
func toolMatchesScope(toolName string, patterns []string) bool {
	for _, p := range patterns {
		if globMatches(p, toolName) {
			return true
		}
	}
	return false
}

// globMatches matches pattern against input using a restricted glob
// grammar: '*' matches a run of characters containing no '.' (a single
// non-dot segment), '**' matches any run of characters including across
// segment boundaries, and '\' escapes the following character literally.
func globMatches(pattern, input string) bool {
	return globMatchRunes([]rune(pattern), []rune(input))
}

func globMatchRunes(pattern, input []rune) bool {
	if len(pattern) == 0 {
		return len(input) == 0
	}

	switch pattern[0] {
	case '\\':
		if len(pattern) < 2 {
			return false // dangling escape
		}
		if len(input) == 0 || input[0] != pattern[1] {
			return false
		}
		return globMatchRunes(pattern[2:], input[1:])

	case '*':
		if len(pattern) >= 2 && pattern[1] == '*' {
			rest := pattern[2:]
			for i := 0; i <= len(input); i++ {
				if globMatchRunes(rest, input[i:]) {
					return true
				}
			}
			return false
		}
		rest := pattern[1:]
		for i := 0; i <= len(input); i++ {
			if i > 0 && input[i-1] == '.' {
				break // '*' covers only a single non-dot segment
			}
			if globMatchRunes(rest, input[i:]) {
				return true
			}
		}
		return false

	default:
		if len(input) == 0 || input[0] != pattern[0] {
			return false
		}
		return globMatchRunes(pattern[1:], input[1:])
	}
}
