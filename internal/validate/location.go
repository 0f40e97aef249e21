package validate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/ordvet/internal/document"
	"github.com/dgallion1/ordvet/internal/llm"
	"github.com/dgallion1/ordvet/internal/ngram"
)

// heuristicWindow is the n-gram size scanned for jurisdiction name + state
// co-occurrence.
const heuristicWindow = 5

// CountyValidator decides whether a document contains legal text that
// applies to a particular county. Stages run cheapest-first and
// short-circuit:
//
//  1. jurisdiction scope vote; a failure rejects the document outright
//  2. source URL check; a pass accepts without reading the text again
//  3. n-gram co-occurrence heuristic; a hit accepts without an LLM call
//  4. county name vote as the final word
type CountyValidator struct {
	threshold    float64
	jurisdiction Validator
	url          Validator
	name         Validator
	log          *slog.Logger
}

// NewCountyValidator wires the three county validators onto one caller.
func NewCountyValidator(caller llm.StructuredCaller, threshold float64, log *slog.Logger) *CountyValidator {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &CountyValidator{
		threshold:    threshold,
		jurisdiction: NewCountyJurisdictionValidator(caller),
		url:          NewURLValidator(caller),
		name:         NewCountyNameValidator(caller),
		log:          log,
	}
}

// Check reports whether doc contains legal text that applies to the named
// county and state.
func (v *CountyValidator) Check(ctx context.Context, doc *document.Document, county, state string) (bool, error) {
	source := doc.Source()
	log := v.log.With("source", sourceOrUnknown(source), "county", county, "state", state)

	log.Debug("checking jurisdiction scope")
	ok, err := CheckDocument(ctx, v.jurisdiction, doc, v.threshold, Fields{"county": county}, log)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Debug("document rejected: wrong jurisdiction scope")
		return false, nil
	}

	log.Debug("checking source url")
	urlOK, err := v.url.Check(ctx, source, Fields{"county": county, "state": state})
	if err != nil {
		return false, err
	}
	if urlOK {
		log.Debug("document accepted: url names county and state")
		return true, nil
	}

	// "Box Elder County" should match the name "Box Elder" in text.
	name := strings.TrimSuffix(strings.ToLower(county), " county")
	if nameNearState(doc, name, "", state) {
		log.Debug("document accepted: county name found near state name")
		return true, nil
	}

	log.Debug("checking county name")
	ok, err = CheckDocument(ctx, v.name, doc, v.threshold, Fields{"county": county, "state": state}, log)
	if err != nil {
		return false, err
	}
	if ok {
		log.Debug("document accepted: county name vote passed")
	} else {
		log.Debug("document rejected: county name vote failed")
	}
	return ok, nil
}

// DistrictValidator decides whether a document contains legal text that
// applies to a particular groundwater conservation district. District
// source URLs rarely embed the district name, so there is no URL stage.
type DistrictValidator struct {
	threshold    float64
	jurisdiction Validator
	name         Validator
	log          *slog.Logger
}

// NewDistrictValidator wires the district validators onto one caller.
func NewDistrictValidator(caller llm.StructuredCaller, threshold float64, log *slog.Logger) *DistrictValidator {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &DistrictValidator{
		threshold:    threshold,
		jurisdiction: NewDistrictJurisdictionValidator(caller),
		name:         NewDistrictNameValidator(caller),
		log:          log,
	}
}

// Check reports whether doc contains legal text that applies to the named
// district. The acronym, when non-empty, counts as a name hit for the
// heuristic stage.
func (v *DistrictValidator) Check(ctx context.Context, doc *document.Document, district, acronym, state string) (bool, error) {
	log := v.log.With("source", sourceOrUnknown(doc.Source()), "district", district, "state", state)

	log.Debug("checking jurisdiction scope")
	ok, err := CheckDocument(ctx, v.jurisdiction, doc, v.threshold, Fields{"district": district}, log)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Debug("document rejected: wrong jurisdiction scope")
		return false, nil
	}

	if nameNearState(doc, district, acronym, state) {
		log.Debug("document accepted: district name found near state name")
		return true, nil
	}

	log.Debug("checking district name")
	ok, err = CheckDocument(ctx, v.name, doc, v.threshold, Fields{"district": district, "state": state}, log)
	if err != nil {
		return false, err
	}
	if ok {
		log.Debug("document accepted: district name vote passed")
	} else {
		log.Debug("document rejected: district name vote failed")
	}
	return ok, nil
}

// nameNearState scans every 5-gram of every page for the jurisdiction name
// (or its acronym) and the state appearing together. Matching is
// case-insensitive on token boundaries, so multi-word names match when
// their tokens are adjacent within a window.
func nameNearState(doc *document.Document, name, acronym, state string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	acronym = strings.ToLower(strings.TrimSpace(acronym))
	state = strings.ToLower(strings.TrimSpace(state))
	if name == "" || state == "" {
		return false
	}
	for _, page := range doc.Pages() {
		for _, gram := range ngram.NGrams(page, heuristicWindow) {
			window := " " + strings.Join(gram, " ") + " "
			nameHit := strings.Contains(window, " "+name+" ") ||
				(acronym != "" && strings.Contains(window, " "+acronym+" "))
			if nameHit && strings.Contains(window, " "+state+" ") {
				return true
			}
		}
	}
	return false
}

func sourceOrUnknown(source string) string {
	if source == "" {
		return "unknown"
	}
	return source
}
