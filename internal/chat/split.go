package chat

// MaxChunkLen is the outbound text chunk size in characters.
const MaxChunkLen = 4000

// ChunkText slices text into pieces of at most maxLen characters. Cuts are at
// fixed offsets and may split words; runes are never split.
func ChunkText(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if maxLen <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	parts := make([]string, 0, (len(runes)+maxLen-1)/maxLen)
	for start := 0; start < len(runes); start += maxLen {
		end := min(start+maxLen, len(runes))
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
