// Package document holds the document model consumed by the validators and
// the loaders that build it from common legal-document formats.
package document

// Document is an ordered set of rendered pages plus the raw page subset the
// validators vote over. Raw pages correspond positionally to logical page
// order; their lengths weight the per-page verdicts. Documents are passed by
// reference and never mutated by validators.
type Document struct {
	pages    []string
	rawPages []string
	meta     map[string]string
}

// Option configures a Document at construction time.
type Option func(*Document)

// WithRawPages overrides the default raw pages (the rendered pages).
func WithRawPages(raw []string) Option {
	return func(d *Document) { d.rawPages = raw }
}

// WithMetadata merges metadata entries into the document.
func WithMetadata(meta map[string]string) Option {
	return func(d *Document) {
		for k, v := range meta {
			d.meta[k] = v
		}
	}
}

// New builds a Document from rendered pages. Without options the raw pages
// are the rendered pages.
func New(pages []string, opts ...Option) *Document {
	d := &Document{
		pages: pages,
		meta:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rawPages == nil {
		d.rawPages = d.pages
	}
	return d
}

// Pages returns the rendered page texts in order.
func (d *Document) Pages() []string { return d.pages }

// RawPages returns the raw page texts in order.
func (d *Document) RawPages() []string { return d.rawPages }

// Attr returns a metadata value ("" when absent).
func (d *Document) Attr(key string) string { return d.meta[key] }

// SetAttr records a metadata value.
func (d *Document) SetAttr(key, value string) { d.meta[key] = value }

// Source returns the "source" metadata entry, typically a URL.
func (d *Document) Source() string { return d.meta["source"] }

// PDF raw-page policy: LLM validation over every page of a long PDF is
// wasteful, so only a leading fraction plus a couple of trailing pages are
// kept as raw pages.
const (
	defaultPercentRawToKeep = 25
	defaultMaxRawPages      = 18
	defaultTrailingRawPages = 2
)

// rawPageSubset keeps the first percentToKeep% of pages (clamped to
// [1, maxRaw]) and, when the document is long enough, the last trailing
// pages as well.
func rawPageSubset(pages []string, percentToKeep float64, maxRaw, trailing int) []string {
	if len(pages) == 0 {
		return nil
	}
	numToKeep := int(percentToKeep / 100 * float64(len(pages)))
	if numToKeep < 1 {
		numToKeep = 1
	}
	if numToKeep > maxRaw {
		numToKeep = maxRaw
	}
	if numToKeep >= len(pages) {
		return pages
	}

	raw := make([]string, 0, numToKeep+trailing)
	raw = append(raw, pages[:numToKeep]...)
	if len(pages) > numToKeep+trailing {
		raw = append(raw, pages[len(pages)-trailing:]...)
	} else {
		raw = append(raw, pages[numToKeep:]...)
	}
	return raw
}
