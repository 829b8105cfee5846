package bot

import "strings"

// telegramMessageLimit stays under Telegram's hard 4096-char cap to leave
// room for markdown overhead.
const telegramMessageLimit = 4000

// SplitMessage breaks text into parts no longer than maxLength, preferring
// paragraph boundaries and falling back to line boundaries for oversized
// paragraphs.
func SplitMessage(text string, maxLength int) []string {
	if len(text) <= maxLength {
		return []string{text}
	}

	var parts []string
	var current string

	for _, para := range strings.Split(text, "\n\n") {
		if len(current)+len(para)+2 <= maxLength {
			if current != "" {
				current += "\n\n" + para
			} else {
				current = para
			}
			continue
		}

		if current != "" {
			parts = append(parts, current)
		}
		if len(para) <= maxLength {
			current = para
			continue
		}

		current = ""
		for _, line := range strings.Split(para, "\n") {
			if len(current)+len(line)+1 <= maxLength {
				if current != "" {
					current += "\n" + line
				} else {
					current = line
				}
			} else {
				if current != "" {
					parts = append(parts, current)
				}
				current = line
			}
		}
	}

	if current != "" {
		parts = append(parts, current)
	}
	return parts
}
