// Package chunker packs triaged files into chunks that fit a model context budget.
//
// Each file is rendered as a Markdown heading followed by a fenced code block.
// Rendered files are packed in order; a file too large for any chunk is split
// into parts, preferably at line breaks, and each part carries its own heading.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repodoc-cli/internal/core/domain"
)

// DefaultLimit is the default maximum chunk size in bytes.
const DefaultLimit = domain.DefaultContextLimit

// DefaultOverlap is the default number of bytes repeated between parts of a split file.
const DefaultOverlap = 0

// Chunk is a contiguous slice of the rendered repository content.
type Chunk struct {
	// Index is the zero-based position of the chunk.
	Index int

	// Content is the rendered text sent to the model.
	Content string

	// Paths lists the files with content in this chunk, in order.
	Paths []string
}

// Processor packs files into chunks.
type Processor struct {
	limit   int
	overlap int
}

// Option configures the processor.
type Option func(*Processor)

// WithLimit sets the maximum chunk size in bytes.
func WithLimit(limit int) Option {
	return func(p *Processor) {
		if limit > 0 {
			p.limit = limit
		}
	}
}

// WithOverlap sets how many bytes of a split file are repeated at the start of the next part.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		limit:   DefaultLimit,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap leaves room for progress.
	if p.overlap >= p.limit/2 {
		p.overlap = p.limit / 4
	}

	return p
}

// Limit returns the maximum chunk size in bytes.
func (p *Processor) Limit() int {
	return p.limit
}

// Render formats one file the way it appears in a chunk.
func Render(path, content string) string {
	return renderPart(path, content, 0, 0)
}

func renderPart(path, content string, part, parts int) string {
	var b strings.Builder
	b.Grow(len(path) + len(content) + 32)
	b.WriteString("### ")
	b.WriteString(path)
	if parts > 1 {
		fmt.Fprintf(&b, " (part %d of %d)", part, parts)
	}
	b.WriteString("\n```\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("```\n\n")
	return b.String()
}

// Pack splits files into chunks no larger than the limit.
// The result is deterministic for the same input. Empty input yields no chunks.
//
// A chunk exceeds the limit only when the limit is smaller than the heading
// of a single file part.
func (p *Processor) Pack(files []domain.TriagedFile) []Chunk {
	var (
		chunks  []Chunk
		current strings.Builder
		paths   []string
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Content: current.String(), Paths: paths})
		current.Reset()
		paths = nil
	}

	add := func(path, block string) {
		if current.Len() > 0 && current.Len()+len(block) > p.limit {
			flush()
		}
		current.WriteString(block)
		if len(paths) == 0 || paths[len(paths)-1] != path {
			paths = append(paths, path)
		}
	}

	for _, f := range files {
		if f.Content == "" {
			continue
		}

		block := Render(f.Path, f.Content)
		if len(block) <= p.limit {
			add(f.Path, block)
			continue
		}

		pieces := p.split(f.Path, f.Content)
		for i, piece := range pieces {
			add(f.Path, renderPart(f.Path, piece, i+1, len(pieces)))
		}
	}
	flush()

	return chunks
}

// split cuts content into pieces whose rendered parts fit the limit.
func (p *Processor) split(path, content string) []string {
	// Worst-case heading, with a generous part counter.
	overhead := len(renderPart(path, "", 99999, 99999))
	size := p.limit - overhead
	if size < 1 {
		size = 1
	}

	var pieces []string
	start := 0
	for start < len(content) {
		end := start + size
		if end >= len(content) {
			pieces = append(pieces, content[start:])
			break
		}
		end = cutPoint(content, start, end)
		pieces = append(pieces, content[start:end])

		next := end - p.overlap
		if next <= start {
			next = end
		}
		for next < len(content) && !utf8.RuneStart(content[next]) {
			next++
		}
		start = next
	}
	return pieces
}

// cutPoint picks an end index in (start, end], preferring the last line break
// in the second half of the window and never splitting a UTF-8 sequence.
func cutPoint(content string, start, end int) int {
	if i := strings.LastIndexByte(content[start:end], '\n'); i >= 0 && i+1 > (end-start)/2 {
		return start + i + 1
	}
	for end > start+1 && !utf8.RuneStart(content[end]) {
		end--
	}
	return end
}
