package utils

// SplitText splits a long string into chunks of at most chunkSize
// characters with the given overlap between consecutive chunks. When a
// chunk would cut mid-sentence, the split backs up to the last '.' or '\n'
// inside the window, but only if that boundary lies past the halfway point;
// otherwise the hard limit wins. Each chunk after the first starts exactly
// 'overlap' characters before the previous chunk ended, so trimming the
// overlap and concatenating reconstructs the input losslessly.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen == 0 {
		return nil
	}
	if totalLen <= chunkSize {
		return []string{text}
	}
	if overlap >= chunkSize {
		overlap = 0 // fallback: no progress possible otherwise
	}

	var chunks []string
	start := 0

	for start < totalLen {
		end := start + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[start:totalLen]))
			break
		}

		if bp := boundaryIn(runes[start:end]); bp > chunkSize/2 {
			end = start + bp + 1
		}

		chunks = append(chunks, string(runes[start:end]))

		next := end - overlap
		if next <= start {
			next = end // ensure progress when the window shrank below the overlap
		}
		start = next
	}

	return chunks
}

// boundaryIn returns the index of the last sentence or line break in the
// window, or -1.
func boundaryIn(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
