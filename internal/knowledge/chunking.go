package knowledge

import "strings"

const minChunkSize = 200

// SplitIntoChunks splits text into overlapping chunks of at most chunkSize
// runes. Sizes below 200 are raised to 200; an overlap that leaves no
// forward progress is ignored.
func SplitIntoChunks(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Work in runes so a multi-byte character is never cut in half.
	r := []rune(text)

	if chunkSize < minChunkSize {
		chunkSize = minChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	out := make([]string, 0, (len(r)/step)+1)
	for start := 0; start < len(r); start += step {
		end := min(start+chunkSize, len(r))

		if p := strings.TrimSpace(string(r[start:end])); p != "" {
			out = append(out, p)
		}
		if end == len(r) {
			break
		}
	}
	return out
}

// chunkPages splits every page separately so each chunk keeps its page
// number. Index runs across the whole document.
func chunkPages(pages []Page, chunkSize, overlap int) []Chunk {
	var out []Chunk
	for _, p := range pages {
		for _, text := range SplitIntoChunks(p.Text, chunkSize, overlap) {
			out = append(out, Chunk{Page: p.Number, Index: len(out), Text: text})
		}
	}
	return out
}
