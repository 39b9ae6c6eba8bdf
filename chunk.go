package docrag

// Chunk is a slice of an imported file stored with its embedding.
type Chunk struct {
	ID        string
	Handle    string
	Source    string
	Position  int
	Content   string
	Embedding []float32
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.Handle == "" {
		return Errorf(EINVALID, "chunk corpus handle required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// SplitText splits text into chunks of at most size runes where each chunk
// repeats the last overlap runes of the previous one. It returns nil for
// empty text. Callers must ensure 0 <= overlap < size.
func SplitText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
