// internal/jobs/models.go
package jobs

// Kind identifies the generation pipeline a job runs through.
type Kind string

const (
	KindStaticAd  Kind = "static_ad"
	KindPrelander Kind = "prelander"
)

// GeneratedImage is one output artifact. URL is the content key: two entries
// with the same URL are the same image.
type GeneratedImage struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	PromptIndex int    `json:"promptIndex,omitempty"`
}

// StatusUpdate is one observation of a job, as returned by the status endpoint.
// Seq is assigned by the poll loop in issue order and is used to discard stale
// out-of-order snapshots.
type StatusUpdate struct {
	Seq           int              `json:"-"`
	Status        Status           `json:"-"`
	RawStatus     string           `json:"status"`
	Progress      int              `json:"progress"`
	Images        []GeneratedImage `json:"images,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
}

// Result is the full payload fetched once after terminal success. It is kept
// separate from StatusUpdate so polling responses stay small.
type Result struct {
	JobID       string                 `json:"jobId"`
	Images      []GeneratedImage       `json:"images"`
	CreditsUsed int                    `json:"creditsUsed,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// SubmitRequest carries everything needed to create a job. IdempotencyKey is
// generated once per logical submission; an overage resubmission reuses it so
// the backend can deduplicate.
type SubmitRequest struct {
	Kind           Kind                   `json:"kind"`
	Params         map[string]interface{} `json:"params"`
	IdempotencyKey string                 `json:"idempotencyKey"`
	AllowOverage   bool                   `json:"allowOverage"`
}

// Job is the local view of one submitted job.
type Job struct {
	ID            string           `json:"id"`
	Kind          Kind             `json:"kind"`
	Status        Status           `json:"status"`
	RawStatus     string           `json:"rawStatus"`
	Progress      int              `json:"progress"`
	Images        []GeneratedImage `json:"images,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
}

// Apply folds a status update into the job.
func (j *Job) Apply(u *StatusUpdate) {
	j.Status = u.Status
	j.RawStatus = u.RawStatus
	if u.Progress > j.Progress {
		j.Progress = u.Progress
	}
	if u.FailureReason != "" {
		j.FailureReason = u.FailureReason
	}
}
