package extract

const (
	// DefaultWindow and DefaultOverlap size the sliding window over
	// document text, in runes.
	DefaultWindow  = 1024
	DefaultOverlap = 256
)

// Chunks splits text into overlapping windows of runes. Slicing on rune
// boundaries keeps multi-byte characters (curly quotes, section marks)
// intact instead of splitting them into invalid UTF-8 halves. Each
// chunk after the first overlaps its predecessor by exactly overlap
// runes; the final chunk absorbs the remainder. A text no longer than
// the window yields exactly one chunk. For rune length L the chunk
// count is ceil((L-overlap)/(window-overlap)).
func Chunks(text string, window, overlap int) []string {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= window {
		return []string{text}
	}

	stride := window - overlap
	if stride <= 0 {
		stride = window
	}

	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + window
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
