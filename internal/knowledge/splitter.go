package knowledge

import "strings"

// SplitMarkdown slices a markdown document into chunks of at most chunkSize
// runes, preferring paragraph boundaries. Paragraphs longer than chunkSize
// are hard-split so no chunk exceeds the limit.
func SplitMarkdown(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 400
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		for len([]rune(para)) > chunkSize {
			flush()
			runes := []rune(para)
			chunks = append(chunks, strings.TrimSpace(string(runes[:chunkSize])))
			para = strings.TrimSpace(string(runes[chunkSize:]))
		}
		if para == "" {
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(para))+2 > chunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}
