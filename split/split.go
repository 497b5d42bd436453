// Package split partitions text into size-bounded, overlapping,
// boundary-respecting segments for embedding. It provides a generic
// boundary-aware splitter and a markdown structural splitter that layers
// section and block awareness on top of it.
package split

import (
	darkvec "github.com/darkvec/darkvec"
)

// Split partitions text into ordered segments of at most chunkSize bytes,
// each overlapping its predecessor by up to chunkOverlap bytes of trailing
// context. Breaks prefer sentence-ending punctuation, then word boundaries;
// a single word longer than the budget is emitted whole rather than split
// internally. Text no longer than chunkSize is returned as a single
// segment, even when empty.
func Split(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if chunkOverlap >= chunkSize {
		return nil, &darkvec.ErrInvalidChunkConfig{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
	}
	return splitBounded(text, chunkSize, chunkOverlap), nil
}

// splitBounded assumes chunkOverlap < chunkSize.
func splitBounded(text string, chunkSize, chunkOverlap int) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	var splits []string
	start := 0
	for start < len(text) {
		segment := text[start:]
		// Leave room for overlap by budgeting chunkSize - chunkOverlap.
		next := findBreak(segment, chunkSize-chunkOverlap)

		overlap := 0
		if start > 0 && chunkOverlap > 0 {
			window := float64(chunkOverlap)
			if w := float64(chunkSize-len(segment)) * 0.8; w > window {
				window = w
			}
			overlap = lookBack(text[:start-1], window)
		}
		splits = append(splits, text[start-overlap:start+next])
		// The +1 skips the boundary character consumed by the break.
		start += next + 1
	}
	return splits
}

// findBreak returns the furthest offset <= budget at which the segment can
// safely end: after a sentence-punctuation run if one occurs within budget,
// otherwise at a word boundary.
func findBreak(segment string, budget int) int {
	if len(segment) <= budget {
		return len(segment)
	}
	if pos := sentenceBreak(segment, budget); pos != -1 {
		return pos
	}
	return wordBreak(segment, budget)
}

func isSentencePunct(c byte) bool {
	return c == '.' || c == '?' || c == '!'
}

// sentenceBreak returns the offset just past the last run of sentence
// punctuation starting within budget, or -1 if none occurs. A run of
// consecutive punctuation ("?!", "..") is consumed whole, even past the
// budget.
func sentenceBreak(segment string, budget int) int {
	last := -1
	for cur := 0; cur < len(segment) && cur < budget; cur++ {
		if isSentencePunct(segment[cur]) {
			end := cur + 1
			for end < len(segment) && isSentencePunct(segment[end]) {
				end++
			}
			last = end
		}
	}
	return last
}

// wordBreak accumulates whole space-delimited words, preserving original
// inter-word spacing, while the accumulated size plus the next word and a
// separator stays under budget. A first word that alone reaches the budget
// is returned whole; text with no usable boundary is returned in full.
func wordBreak(segment string, budget int) int {
	i, size, last := 0, 0, 0
	for i < len(segment) {
		j := i
		for j < len(segment) && segment[j] != ' ' {
			j++
		}
		candidate := size + (j - i) + 1
		if candidate >= budget {
			if size == 0 {
				return j
			}
			break
		}
		size = candidate
		last = j
		for j < len(segment) && segment[j] == ' ' {
			j++
		}
		i = j
	}
	if last > 0 {
		return last
	}
	return len(segment)
}

// lookBack scans prefix backward over at most window characters and returns
// the overlap length ending just after the last whitespace found, or 0 when
// the window contains none. An overlap never starts mid-word.
func lookBack(prefix string, window float64) int {
	pos := -1
	n := len(prefix)
	for i := 0; i < n && float64(i) < window; i++ {
		if prefix[n-1-i] == ' ' {
			pos = i
		}
	}
	if pos < 0 {
		return 0
	}
	return pos + 1
}
