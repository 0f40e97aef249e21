package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a validation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusLoading    JobStatus = "loading"
	StatusValidating JobStatus = "validating"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCached     JobStatus = "cached"
)

// JurisdictionKind selects which composite validator a job runs.
type JurisdictionKind string

const (
	KindCounty   JurisdictionKind = "county"
	KindDistrict JurisdictionKind = "district"
)

// Jurisdiction names the target a document is validated against.
type Jurisdiction struct {
	Kind    JurisdictionKind `json:"kind"`
	Name    string           `json:"name"`
	Acronym string           `json:"acronym,omitempty"`
	State   string           `json:"state"`
}

// Job tracks the state of a single document validation.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Jurisdiction Jurisdiction `json:"jurisdiction"`
	Source       string       `json:"source"`
	Filename     string       `json:"filename"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Pass  bool `json:"pass"`
	Pages int  `json:"pages"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetResult records the final verdict and completes the job.
func (j *Job) SetResult(pass bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Pass = pass
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// SetCachedResult records a verdict served from the cache.
func (j *Job) SetCachedResult(pass bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Pass = pass
	j.Status = StatusCached
	j.Phase = "cache"
	j.UpdatedAt = time.Now()
}

// SetContentHash records the document content hash.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
	j.UpdatedAt = time.Now()
}

// HashKey returns the verdict-cache key for this job's content and
// jurisdiction.
func (j *Job) HashKey() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return VerdictKey(j.ContentHash, j.Jurisdiction)
}

// SetPages records the rendered page count of the loaded document.
func (j *Job) SetPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Pages = n
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string       `json:"job_id"`
	Jurisdiction Jurisdiction `json:"jurisdiction"`
	Source       string       `json:"source"`
	Filename     string       `json:"filename"`
	Status       JobStatus    `json:"status"`
	Phase        string       `json:"phase"`
	Pass         bool         `json:"pass"`
	Pages        int          `json:"pages"`
	Errors       []string     `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:           j.ID,
		Jurisdiction: j.Jurisdiction,
		Source:       j.Source,
		Filename:     j.Filename,
		Status:       j.Status,
		Phase:        j.Phase,
		Pass:         j.Pass,
		Pages:        j.Pages,
		Errors:       errs,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// VerdictKey identifies a (document, jurisdiction) pair for verdict caching.
// Re-validating identical content against the same jurisdiction is pure
// LLM spend.
func VerdictKey(contentHash string, jur Jurisdiction) string {
	return fmt.Sprintf("%s|%s|%s|%s", contentHash, jur.Kind, jur.Name, jur.State)
}

// VerdictCache remembers past verdicts keyed by VerdictKey.
type VerdictCache struct {
	mu       sync.Mutex
	verdicts map[string]bool
}

func NewVerdictCache() *VerdictCache {
	return &VerdictCache{verdicts: make(map[string]bool)}
}

func (c *VerdictCache) Get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.verdicts[key]
	return v, ok
}

func (c *VerdictCache) Put(key string, pass bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[key] = pass
}
