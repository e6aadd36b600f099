// internal/api/models.go
package api

import "adgen-orchestrator/internal/jobs"

// submitEnvelope covers every job-identifier shape the backend has been
// observed to return. The identifier is normalized here, once, instead of
// scattering fallbacks across call sites.
type submitEnvelope struct {
	JobID      string `json:"jobId"`
	JobIDSnake string `json:"job_id"`
	ID         string `json:"id"`
	Data       struct {
		JobID string `json:"jobId"`
		ID    string `json:"id"`
	} `json:"data"`
}

func (e *submitEnvelope) jobID() string {
	for _, id := range []string{e.JobID, e.JobIDSnake, e.ID, e.Data.JobID, e.Data.ID} {
		if id != "" {
			return id
		}
	}
	return ""
}

// apiError is the backend's error body for 4xx responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// 402 overage fields
	OverageCredits       int     `json:"overageCredits"`
	OverageCostPerCredit float64 `json:"overageCostPerCredit"`
	OverageCostTotal     float64 `json:"overageCostTotal"`
	Currency             string  `json:"currency"`

	// 429 quota fields
	CurrentUsage int `json:"currentUsage"`
	Limit        int `json:"limit"`
}

type submitBody struct {
	Kind           string                 `json:"kind"`
	Params         map[string]interface{} `json:"params"`
	IdempotencyKey string                 `json:"idempotencyKey"`
	AllowOverage   bool                   `json:"allowOverage"`
}

type statusResponse struct {
	Status        string                `json:"status"`
	Progress      int                   `json:"progress"`
	Images        []jobs.GeneratedImage `json:"images"`
	FailureReason string                `json:"failureReason"`
	Error         string                `json:"error"`
}

type resultResponse struct {
	JobID       string                 `json:"jobId"`
	Images      []jobs.GeneratedImage  `json:"images"`
	CreditsUsed int                    `json:"creditsUsed"`
	Extra       map[string]interface{} `json:"extra"`
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Usage is the account's credit consumption snapshot.
type Usage struct {
	CurrentUsage int `json:"currentUsage"`
	Limit        int `json:"limit"`
}

// Remaining returns the credits left before overage billing starts.
func (u *Usage) Remaining() int {
	if u.Limit <= u.CurrentUsage {
		return 0
	}
	return u.Limit - u.CurrentUsage
}

// Template is one entry from the backend's template catalog.
type Template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	PreviewURL string `json:"previewUrl"`
}

type templateListResponse struct {
	Templates []Template `json:"templates"`
}

// PromptConfig is the structured per-template prompt configuration. The source
// product recovered this by scraping a CONFIG script blob out of returned
// HTML; the backend now serves it as JSON.
type PromptConfig struct {
	TemplateID string                 `json:"templateId"`
	Prompts    []PromptSlot           `json:"prompts"`
	Defaults   map[string]interface{} `json:"defaults,omitempty"`
}

type PromptSlot struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}
