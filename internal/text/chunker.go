package text

const (
	// DefaultChunkSize and DefaultOverlap are the window parameters used for
	// every chunking pass in the system, measured in runes.
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Chunk is a fixed-size window of normalized document text. Source carries
// the provenance of the originating file (path or URL). Chunks are immutable
// once created.
type Chunk struct {
	Text   string
	Source string
}

// Split walks content with a sliding window of chunkSize runes advancing by
// chunkSize-overlap. The splitter is greedy and non-semantic: it does not
// respect word or sentence boundaries, and the last chunk may be shorter than
// chunkSize. All chunks carry the given source.
func Split(content, source string, chunkSize, overlap int) []Chunk {
	if content == "" || chunkSize <= 0 {
		return nil
	}
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	runes := []rune(content)
	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{Text: string(runes[start:end]), Source: source})
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// SplitDefault applies the standard 1000/200 window.
func SplitDefault(content, source string) []Chunk {
	return Split(content, source, DefaultChunkSize, DefaultOverlap)
}

// Recombine joins chunk texts with blank lines, for callers that want to
// re-chunk an already-chunked corpus as one body of content.
func Recombine(chunks []Chunk) string {
	var combined string
	for i, c := range chunks {
		if i > 0 {
			combined += "\n\n"
		}
		combined += c.Text
	}
	return combined
}
