// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"adgen-orchestrator/internal/common/config"
	stderrors "adgen-orchestrator/internal/common/errors"
	httpx "adgen-orchestrator/internal/common/http"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/jobs"
)

// Client is the single adapter boundary to the generation backend. Every
// response-shape quirk (job id variants, status casing, error bodies) is
// normalized here; callers only ever see the types in internal/jobs.
type Client struct {
	baseURL string
	http    *httpx.Client
	upload  *httpx.Client
	logger  logger.Logger
}

func NewClient(cfg config.BackendConfig, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpx.NewAuthenticatedClient(config.GetDuration(cfg.RequestTimeout), cfg.APIKey),
		upload:  httpx.NewAuthenticatedClient(config.GetDuration(cfg.UploadTimeout), cfg.APIKey),
		logger:  log.WithFields(map[string]interface{}{"component": "api-client"}),
	}
}

// SubmitJob creates a job and returns its normalized identifier.
func (c *Client) SubmitJob(ctx context.Context, req *jobs.SubmitRequest) (string, error) {
	body := submitBody{
		Kind:           string(req.Kind),
		Params:         req.Params,
		IdempotencyKey: req.IdempotencyKey,
		AllowOverage:   req.AllowOverage,
	}

	resp, err := c.postJSON(ctx, "/api/v1/jobs", body)
	if err != nil {
		return "", stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.decodeError(resp)
	}

	var envelope submitEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", stderrors.NewJobSubmissionFailedError(fmt.Errorf("decode submit response: %w", err))
	}

	jobID := envelope.jobID()
	if jobID == "" {
		return "", stderrors.NewJobSubmissionFailedError(fmt.Errorf("submit response carried no job identifier"))
	}

	c.logger.Debug("job submitted", map[string]interface{}{
		"jobId":   jobID,
		"jobKind": string(req.Kind),
	})
	return jobID, nil
}

// JobStatus fetches one status snapshot. The raw status string is preserved
// for logging; the normalized Status is assigned by the poll loop.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*jobs.StatusUpdate, error) {
	resp, err := c.get(ctx, "/api/v1/jobs/"+jobID+"/status")
	if err != nil {
		return nil, stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, stderrors.NewJobNotFoundError(jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, stderrors.NewNetworkError(fmt.Errorf("decode status response: %w", err))
	}

	reason := sr.FailureReason
	if reason == "" {
		reason = sr.Error
	}

	return &jobs.StatusUpdate{
		RawStatus:     sr.Status,
		Progress:      sr.Progress,
		Images:        sr.Images,
		FailureReason: reason,
	}, nil
}

// JobResult fetches the full result payload after terminal success.
func (c *Client) JobResult(ctx context.Context, jobID string) (*jobs.Result, error) {
	resp, err := c.get(ctx, "/api/v1/jobs/"+jobID+"/result")
	if err != nil {
		return nil, stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, stderrors.NewJobNotFoundError(jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var rr resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, stderrors.NewNetworkError(fmt.Errorf("decode result response: %w", err))
	}

	result := &jobs.Result{
		JobID:       rr.JobID,
		Images:      rr.Images,
		CreditsUsed: rr.CreditsUsed,
		Extra:       rr.Extra,
	}
	if result.JobID == "" {
		result.JobID = jobID
	}
	return result, nil
}

// UploadImage posts a multipart image file and returns the stored URL.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", stderrors.NewUploadFailedError(err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", stderrors.NewUploadFailedError(err)
	}
	if contentType != "" {
		_ = writer.WriteField("contentType", contentType)
	}
	if err := writer.Close(); err != nil {
		return "", stderrors.NewUploadFailedError(err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/v1/uploads", &buf)
	if err != nil {
		return "", stderrors.NewUploadFailedError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.upload.DoWithContext(ctx, req)
	if err != nil {
		return "", stderrors.NewUploadFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", c.decodeError(resp)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", stderrors.NewUploadFailedError(fmt.Errorf("decode upload response: %w", err))
	}
	if ur.URL == "" {
		return "", stderrors.NewUploadFailedError(fmt.Errorf("upload response carried no url"))
	}
	return ur.URL, nil
}

// Usage fetches the account's current credit consumption.
func (c *Client) Usage(ctx context.Context) (*Usage, error) {
	resp, err := c.get(ctx, "/api/v1/usage")
	if err != nil {
		return nil, stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var usage Usage
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, stderrors.NewNetworkError(fmt.Errorf("decode usage response: %w", err))
	}
	return &usage, nil
}

// ListTemplates fetches the backend's template catalog.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	resp, err := c.get(ctx, "/api/v1/templates")
	if err != nil {
		return nil, stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var tl templateListResponse
	if err := json.NewDecoder(resp.Body).Decode(&tl); err != nil {
		return nil, stderrors.NewNetworkError(fmt.Errorf("decode template list: %w", err))
	}
	return tl.Templates, nil
}

// TemplatePromptConfig fetches the structured prompt configuration for a template.
func (c *Client) TemplatePromptConfig(ctx context.Context, templateID string) (*PromptConfig, error) {
	resp, err := c.get(ctx, "/api/v1/templates/"+templateID+"/prompt-config")
	if err != nil {
		return nil, stderrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, stderrors.NewTemplateNotFoundError(templateID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var pc PromptConfig
	if err := json.NewDecoder(resp.Body).Decode(&pc); err != nil {
		return nil, stderrors.NewNetworkError(fmt.Errorf("decode prompt config: %w", err))
	}
	if pc.TemplateID == "" {
		pc.TemplateID = templateID
	}
	return &pc, nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.http.DoWithContext(ctx, req)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.http.DoWithContext(ctx, req)
}

// decodeError turns a non-2xx response into the typed error the caller needs:
// 402 with the overage code becomes OverageError, 429 becomes QuotaError,
// 5xx stays retryable, everything else is a plain submission failure.
func (c *Client) decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var ae apiError
	_ = json.Unmarshal(raw, &ae)

	switch {
	case resp.StatusCode == http.StatusPaymentRequired &&
		ae.Code == string(stderrors.ErrCodeOverageConfirmationRequired):
		return &stderrors.OverageError{
			Credits:       ae.OverageCredits,
			CostPerCredit: ae.OverageCostPerCredit,
			CostTotal:     ae.OverageCostTotal,
			Currency:      ae.Currency,
		}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &stderrors.QuotaError{
			CurrentUsage: ae.CurrentUsage,
			Limit:        ae.Limit,
		}

	case resp.StatusCode >= 500:
		return stderrors.NewBackendUnavailableError(resp.StatusCode, strings.TrimSpace(string(raw)))

	default:
		msg := ae.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return stderrors.NewJobSubmissionFailedError(
			fmt.Errorf("backend returned %d: %s", resp.StatusCode, msg))
	}
}
