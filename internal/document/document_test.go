package document

import (
	"fmt"
	"testing"
)

func TestNew_RawPagesDefaultToPages(t *testing.T) {
	d := New([]string{"one", "two"})
	if len(d.RawPages()) != 2 || d.RawPages()[0] != "one" {
		t.Errorf("expected raw pages to default to rendered pages, got %v", d.RawPages())
	}
}

func TestNew_Metadata(t *testing.T) {
	d := New(nil, WithMetadata(map[string]string{"source": "https://boxeldercounty.gov/ordinance.pdf"}))
	if d.Source() != "https://boxeldercounty.gov/ordinance.pdf" {
		t.Errorf("unexpected source: %q", d.Source())
	}
	d.SetAttr("jurisdiction", "Box Elder County")
	if d.Attr("jurisdiction") != "Box Elder County" {
		t.Errorf("unexpected attr: %q", d.Attr("jurisdiction"))
	}
}

func makePages(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("page %d", i+1)
	}
	return pages
}

func TestRawPageSubset(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		wantFirst string
		wantLast  string
		wantLen   int
	}{
		// 25% of 40 = 10 leading pages + 2 trailing.
		{"long document", 40, "page 1", "page 40", 12},
		// 25% of 4 = 1 leading page, trailing pages appended.
		{"short document", 4, "page 1", "page 4", 3},
		// numToKeep clamps to 1 and covers the whole doc.
		{"single page", 1, "page 1", "page 1", 1},
		// 25% of 100 = 25 clamps to maxRaw 18, plus 2 trailing.
		{"very long document", 100, "page 1", "page 100", 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawPageSubset(makePages(tc.pages), defaultPercentRawToKeep, defaultMaxRawPages, defaultTrailingRawPages)
			if len(raw) != tc.wantLen {
				t.Fatalf("expected %d raw pages, got %d: %v", tc.wantLen, len(raw), raw)
			}
			if raw[0] != tc.wantFirst {
				t.Errorf("expected first raw page %q, got %q", tc.wantFirst, raw[0])
			}
			if raw[len(raw)-1] != tc.wantLast {
				t.Errorf("expected last raw page %q, got %q", tc.wantLast, raw[len(raw)-1])
			}
		})
	}
}

func TestRawPageSubset_Empty(t *testing.T) {
	if raw := rawPageSubset(nil, defaultPercentRawToKeep, defaultMaxRawPages, defaultTrailingRawPages); raw != nil {
		t.Errorf("expected nil for empty pages, got %v", raw)
	}
}
