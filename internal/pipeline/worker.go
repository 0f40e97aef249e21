package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/ordvet/internal/document"
)

// countyChecker and districtChecker are the two composite validators a
// worker can run; narrow interfaces keep workers testable without an LLM.
type countyChecker interface {
	Check(ctx context.Context, doc *document.Document, county, state string) (bool, error)
}

type districtChecker interface {
	Check(ctx context.Context, doc *document.Document, district, acronym, state string) (bool, error)
}

// Worker processes a single validation job: load the document, run the
// composite validator for the job's jurisdiction kind, record the verdict.
type Worker struct {
	county    countyChecker
	district  districtChecker
	cache     *VerdictCache
	log       *slog.Logger
	pdfLoader *document.PDFLoader
}

func NewWorker(county countyChecker, district districtChecker, cache *VerdictCache, pdfLoader *document.PDFLoader, log *slog.Logger) *Worker {
	return &Worker{
		county:    county,
		district:  district,
		cache:     cache,
		log:       log,
		pdfLoader: pdfLoader,
	}
}

// Process runs the full validation pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename,
		"kind", job.Jurisdiction.Kind, "jurisdiction", job.Jurisdiction.Name)

	// Phase 1: Load
	job.SetStatus(StatusLoading, "loading")
	doc, err := w.loadDocument(job)
	if err != nil {
		log.Error("load failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "loading")
		return
	}
	job.SetPages(len(doc.Pages()))
	job.SetContentHash(ContentHashHex(job.FileData()))

	// Phase 1.5: Verdict cache
	key := job.HashKey()
	if pass, ok := w.cache.Get(key); ok {
		log.Info("verdict served from cache", "pass", pass)
		job.SetCachedResult(pass)
		return
	}

	// Phase 2: Validate
	job.SetStatus(StatusValidating, "validating")
	var pass bool
	switch job.Jurisdiction.Kind {
	case KindCounty:
		pass, err = w.county.Check(ctx, doc, job.Jurisdiction.Name, job.Jurisdiction.State)
	case KindDistrict:
		pass, err = w.district.Check(ctx, doc, job.Jurisdiction.Name, job.Jurisdiction.Acronym, job.Jurisdiction.State)
	default:
		err = fmt.Errorf("unknown jurisdiction kind %q", job.Jurisdiction.Kind)
	}
	if err != nil {
		log.Error("validation failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "validating")
		return
	}

	w.cache.Put(key, pass)
	job.SetResult(pass)
	log.Info("validation complete", "pass", pass, "pages", len(doc.Pages()))
}

// loadDocument picks a loader from the filename and attaches the job's
// source URL as document metadata.
func (w *Worker) loadDocument(job *Job) (*document.Document, error) {
	var loader document.Loader
	if document.Extension(job.Filename) == ".pdf" && w.pdfLoader != nil {
		loader = w.pdfLoader
	} else {
		l, err := document.ForFile(job.Filename)
		if err != nil {
			return nil, err
		}
		loader = l
	}
	doc, err := loader.Load(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", job.Filename, err)
	}
	doc.SetAttr("source", job.Source)
	return doc, nil
}
