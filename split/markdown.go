package split

import (
	"fmt"
	"strings"

	darkvec "github.com/darkvec/darkvec"
)

// Default bounds applied when NewMarkdown is given no options.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// Option configures a splitter.
type Option func(*config)

type config struct {
	chunkSize    int
	chunkOverlap int
}

// WithChunkSize sets the maximum chunk size in bytes.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithChunkOverlap sets the overlap between adjacent chunks in bytes.
func WithChunkOverlap(n int) Option {
	return func(c *config) { c.chunkOverlap = n }
}

var _ Splitter = (*Markdown)(nil)

// Markdown splits markdown text into chunks that respect its structure.
//
// Strategy:
//  1. Section on header lines (#, ##, ###), cascading header context.
//  2. Split each section into paragraph, quote, and code blocks.
//  3. Greedily pack blocks into size-bounded chunks, never across sections.
//     Oversized quote/code blocks are kept whole; oversized paragraphs fall
//     back to the boundary splitter.
//  4. Tag each chunk with its accumulated header context.
type Markdown struct {
	chunkSize    int
	chunkOverlap int
}

// NewMarkdown creates a Markdown splitter with the given options.
// An overlap that is not strictly smaller than the chunk size is rejected
// eagerly, at construction.
func NewMarkdown(opts ...Option) (*Markdown, error) {
	cfg := config{chunkSize: DefaultChunkSize, chunkOverlap: DefaultChunkOverlap}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.chunkOverlap >= cfg.chunkSize {
		return nil, &darkvec.ErrInvalidChunkConfig{ChunkSize: cfg.chunkSize, ChunkOverlap: cfg.chunkOverlap}
	}
	return &Markdown{chunkSize: cfg.chunkSize, chunkOverlap: cfg.chunkOverlap}, nil
}

// Split chunks markdown text. It is total for any input; configuration was
// validated at construction.
func (m *Markdown) Split(text string) []darkvec.Chunk {
	var sectioned [][]block
	for _, sec := range splitSections(text) {
		sectioned = append(sectioned, splitBlocks(sec))
	}
	chunks := m.assemble(sectioned)
	return tagHeaders(chunks)
}

// --- Stage 1: sectioning ---

// headerContext accumulates the most recent header text seen at each level.
// It is a value threaded through the sectioning pass: each header line
// produces an updated copy.
type headerContext struct {
	h1, h2, h3 string
}

// set records header text at a level, clearing all deeper levels.
func (hc headerContext) set(level int, text string) headerContext {
	switch level {
	case 1:
		return headerContext{h1: text}
	case 2:
		return headerContext{h1: hc.h1, h2: text}
	default:
		hc.h3 = text
		return hc
	}
}

func (hc headerContext) headers() map[string]string {
	m := make(map[string]string)
	if hc.h1 != "" {
		m["Header1"] = hc.h1
	}
	if hc.h2 != "" {
		m["Header2"] = hc.h2
	}
	if hc.h3 != "" {
		m["Header3"] = hc.h3
	}
	return m
}

type section struct {
	content string
	headers map[string]string
}

// headerLevel returns 1-3 for a markdown header line handled by the
// sectioner, 0 otherwise.
func headerLevel(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(trimmed, prefix) {
			return level, strings.TrimSpace(trimmed[level+1:])
		}
	}
	return 0, ""
}

// splitSections splits text on header lines. Each section carries the
// cascading header context in effect while its lines accumulated; header
// lines themselves do not contribute content. Lines inside an open code
// fence are never treated as headers, so fenced code containing
// "#"-prefixed comments stays in one section.
func splitSections(text string) []section {
	var (
		sections  []section
		hc        headerContext
		lines     []string
		openFence string
	)
	flush := func() {
		if len(lines) == 0 {
			return
		}
		sections = append(sections, section{
			content: strings.Join(lines, "\n"),
			headers: hc.headers(),
		})
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		marker := fenceMarker(line)
		switch {
		case openFence != "":
			if marker == openFence {
				openFence = ""
			}
		case marker != "":
			openFence = marker
		default:
			if level, header := headerLevel(line); level > 0 {
				flush()
				hc = hc.set(level, header)
				continue
			}
		}
		lines = append(lines, line)
	}
	flush()
	return sections
}

// --- Stage 2: blocking ---

// blockKind distinguishes paragraphs, which may be re-split when oversized,
// from verbatim blocks (code, quotes), which must never be split internally.
type blockKind int

const (
	blockParagraph blockKind = iota
	blockVerbatim
)

type block struct {
	kind    blockKind
	content string
	headers map[string]string
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ">")
}

// fenceMarker returns the fence marker opening or closing a code fence on
// this line, or "" for ordinary lines.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```"
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~"
	}
	return ""
}

// fenceEnd returns the index of the closing fence matching marker after the
// opener at start, or -1 when the fence is unterminated.
func fenceEnd(lines []string, start int, marker string) int {
	for i := start + 1; i < len(lines); i++ {
		if fenceMarker(lines[i]) == marker {
			return i
		}
	}
	return -1
}

// splitBlocks scans a section's lines into blocks. Blank lines separate
// paragraphs and never contribute content; quote and code blocks are
// captured verbatim with newlines preserved. An opening code fence with no
// terminator falls through as an ordinary paragraph line.
func splitBlocks(sec section) []block {
	lines := strings.Split(sec.content, "\n")

	var blocks []block
	var para []string
	flushPara := func() {
		if len(para) == 0 {
			return
		}
		blocks = append(blocks, block{
			kind:    blockParagraph,
			content: strings.Join(para, "\n"),
			headers: sec.headers,
		})
		para = nil
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if isBlank(line) {
			flushPara()
			i++
			continue
		}

		if marker := fenceMarker(line); marker != "" {
			if end := fenceEnd(lines, i, marker); end >= 0 {
				flushPara()
				blocks = append(blocks, block{
					kind:    blockVerbatim,
					content: strings.Join(lines[i:end+1], "\n"),
					headers: sec.headers,
				})
				i = end + 1
				continue
			}
			// Unterminated fence: treated as a plain paragraph line below.
		} else if isQuoteLine(line) {
			flushPara()
			end := i
			for end < len(lines) && isQuoteLine(lines[end]) {
				end++
			}
			blocks = append(blocks, block{
				kind:    blockVerbatim,
				content: strings.Join(lines[i:end], "\n"),
				headers: sec.headers,
			})
			i = end
			continue
		}

		para = append(para, strings.TrimSpace(line))
		i++
	}
	flushPara()
	return blocks
}

// --- Stage 3: chunk assembly ---

// assemble packs blocks into chunks of at most chunkSize bytes, resetting
// per section so chunks never span a header boundary. A chunk's metadata is
// that of its first block; joined blocks are separated by a blank line.
func (m *Markdown) assemble(sections [][]block) []darkvec.Chunk {
	var chunks []darkvec.Chunk

	for _, blocks := range sections {
		var current []block
		currentSize := 0
		flush := func() {
			if len(current) == 0 {
				return
			}
			parts := make([]string, len(current))
			for i, b := range current {
				parts[i] = b.content
			}
			chunks = append(chunks, darkvec.Chunk{
				Content:  strings.Join(parts, "\n\n"),
				Metadata: darkvec.ChunkMetadata{Headers: current[0].headers},
			})
			current = nil
			currentSize = 0
		}

		for _, b := range blocks {
			size := len(b.content)

			if currentSize+size <= m.chunkSize {
				current = append(current, b)
				currentSize += size
				continue
			}

			flush()

			// Try the block in a fresh chunk.
			if size <= m.chunkSize {
				current = append(current, b)
				currentSize += size
				continue
			}

			// Too big for any chunk. Verbatim blocks are never split
			// internally; they become their own oversized chunk.
			if b.kind == blockVerbatim {
				current = append(current, b)
				currentSize += size
				continue
			}

			// Oversized paragraph: fall back to the boundary splitter.
			for _, piece := range splitBounded(b.content, m.chunkSize, m.chunkOverlap) {
				chunks = append(chunks, darkvec.Chunk{
					Content:  piece,
					Metadata: darkvec.ChunkMetadata{Headers: b.headers},
				})
			}
		}
		flush()
	}
	return chunks
}

// --- Stage 4: header tagging ---

var headerOrder = []struct {
	key    string
	prefix string
}{
	{"Header1", "# "},
	{"Header2", "## "},
	{"Header3", "### "},
	{"Header4", "#### "},
}

// tagHeaders prefixes each chunk that has header context with a rendered
// <chunk_headers> line and wraps the original content in <chunk_content>
// tags. Chunks without headers are left unwrapped.
func tagHeaders(chunks []darkvec.Chunk) []darkvec.Chunk {
	for i := range chunks {
		hs := chunks[i].Metadata.Headers

		var rendered []string
		for _, h := range headerOrder {
			if v, ok := hs[h.key]; ok {
				rendered = append(rendered, h.prefix+v)
			}
		}
		if len(rendered) == 0 {
			continue
		}

		chunks[i].Content = fmt.Sprintf(
			"<chunk_headers>\n%s\n</chunk_headers>\n\n<chunk_content>\n%s\n</chunk_content>",
			strings.Join(rendered, ", "),
			chunks[i].Content,
		)
	}
	return chunks
}
