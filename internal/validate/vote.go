package validate

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/ordvet/internal/document"
)

// DefaultScoreThreshold is the fraction of document text (by character
// count) that must pass a validator before the document as a whole does.
// The comparison is strict: a score equal to the threshold fails.
const DefaultScoreThreshold = 0.8

// CheckDocument runs a validator concurrently across a document's raw pages
// and combines the per-page verdicts into a length-weighted score. Pages
// with more text carry proportionally more weight, so boilerplate pages
// cannot outvote the body of the document.
//
// Any page-level error fails the whole check; remaining pages are cancelled
// through the group context.
func CheckDocument(ctx context.Context, v Validator, doc *document.Document, threshold float64, fields Fields, log *slog.Logger) (bool, error) {
	if log == nil {
		log = slog.Default()
	}
	pages := doc.RawPages()
	if len(pages) == 0 {
		log.Debug("document has no raw pages", "validator", v.Name())
		return false, nil
	}

	verdicts := make([]bool, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	for i, text := range pages {
		i, text := i, text
		g.Go(func() error {
			ok, err := v.Check(ctx, text, fields)
			if err != nil {
				return fmt.Errorf("%s check on page %d: %w", v.Name(), i, err)
			}
			verdicts[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, err
	}

	score := weightedVote(verdicts, pages)
	pass := score > threshold
	log.Debug("document vote",
		"validator", v.Name(),
		"score", score,
		"threshold", threshold,
		"pass", pass,
	)
	return pass, nil
}

// weightedVote computes the fraction of text, weighted by page length in
// characters, that passed validation.
func weightedVote(verdicts []bool, pages []string) float64 {
	var passed, total float64
	for i, page := range pages {
		w := float64(len(page))
		total += w
		if verdicts[i] {
			passed += w
		}
	}
	if total == 0 {
		return 0
	}
	return passed / total
}
