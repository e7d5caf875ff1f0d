package bot

import (
	"strings"
	"unicode"
)

// Parse splits a prefixed command into its name and arguments. Double quotes
// group words into one argument. ok is false when content is not addressed
// to the bot.
func Parse(prefix, content string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	words := tokenize(content[len(prefix):])
	if len(words) == 0 {
		return "", nil, false
	}
	return words[0], words[1:], true
}

func tokenize(input string) []string {
	var (
		words   []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started {
			words = append(words, current.String())
		}
		current.Reset()
		started = false
	}
	for _, r := range input {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return words
}
