// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adgen-orchestrator/internal/common/config"
	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/jobs"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.BackendConfig{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		RequestTimeout: 5000,
		UploadTimeout:  5000,
	}
	return NewClient(cfg, logger.NewNoOpLogger()), srv
}

func TestSubmitJob_NormalizesIDShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"camelCase jobId", `{"jobId":"job-1"}`, "job-1"},
		{"snake_case job_id", `{"job_id":"job-2"}`, "job-2"},
		{"bare id", `{"id":"job-3"}`, "job-3"},
		{"nested data.jobId", `{"data":{"jobId":"job-4"}}`, "job-4"},
		{"nested data.id", `{"data":{"id":"job-5"}}`, "job-5"},
		{"top-level wins over nested", `{"jobId":"top","data":{"id":"nested"}}`, "top"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/jobs", r.URL.Path)
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.body)
			}))

			id, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSubmitJob_NoIdentifier(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true}`)
	}))

	_, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeJobSubmissionFailed, stdErr.Code)
}

func TestSubmitJob_ForwardsRequestBody(t *testing.T) {
	var received map[string]interface{}
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		fmt.Fprint(w, `{"jobId":"job-9"}`)
	}))

	req := &jobs.SubmitRequest{
		Kind:           jobs.KindPrelander,
		Params:         map[string]interface{}{"templateId": "tpl-1"},
		IdempotencyKey: "key-42",
		AllowOverage:   true,
	}
	_, err := client.SubmitJob(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "prelander", received["kind"])
	assert.Equal(t, "key-42", received["idempotencyKey"])
	assert.Equal(t, true, received["allowOverage"])
}

func TestSubmitJob_OverageResponse(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{
			"code": "JOB_CREDITS_OVERAGE_CONFIRMATION_REQUIRED",
			"overageCredits": 8,
			"overageCostPerCredit": 0.25,
			"overageCostTotal": 2.0,
			"currency": "USD"
		}`)
	}))

	_, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
	require.Error(t, err)

	overage, ok := stderrors.IsOverage(err)
	require.True(t, ok)
	assert.Equal(t, 8, overage.Credits)
	assert.Equal(t, 0.25, overage.CostPerCredit)
	assert.Equal(t, 2.0, overage.CostTotal)
	assert.Equal(t, "USD", overage.Currency)
}

func TestSubmitJob_402WithoutOverageCode(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"code":"PAYMENT_METHOD_EXPIRED","message":"card declined"}`)
	}))

	_, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
	require.Error(t, err)

	// A 402 without the overage code is an ordinary failure, not a prompt.
	_, ok := stderrors.IsOverage(err)
	assert.False(t, ok)
}

func TestSubmitJob_QuotaResponse(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"currentUsage":500,"limit":500}`)
	}))

	_, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
	require.Error(t, err)

	quota, ok := stderrors.IsQuota(err)
	require.True(t, ok)
	assert.Equal(t, 500, quota.CurrentUsage)
	assert.Equal(t, 500, quota.Limit)
}

func TestSubmitJob_ServerError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))

	_, err := client.SubmitJob(context.Background(), &jobs.SubmitRequest{Kind: jobs.KindStaticAd})
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeBackendUnavailable, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestJobStatus(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/job-1/status", r.URL.Path)
		fmt.Fprint(w, `{
			"status": "COMPLETED_STATIC_AD_GEN",
			"progress": 100,
			"images": [{"url":"https://cdn/a.png","width":1024,"height":1024}]
		}`)
	}))

	update, err := client.JobStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED_STATIC_AD_GEN", update.RawStatus)
	assert.Equal(t, 100, update.Progress)
	require.Len(t, update.Images, 1)
	assert.Equal(t, "https://cdn/a.png", update.Images[0].URL)
}

func TestJobStatus_FailureReasonFallsBackToError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"FAILED","error":"gpu pool exhausted"}`)
	}))

	update, err := client.JobStatus(context.Background(), "job-2")
	require.NoError(t, err)
	assert.Equal(t, "gpu pool exhausted", update.FailureReason)
}

func TestJobStatus_NotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.JobStatus(context.Background(), "missing")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeJobNotFound, stdErr.Code)
}

func TestJobResult(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/job-3/result", r.URL.Path)
		fmt.Fprint(w, `{
			"images": [{"url":"https://cdn/a.png"},{"url":"https://cdn/b.png"}],
			"creditsUsed": 4
		}`)
	}))

	result, err := client.JobResult(context.Background(), "job-3")
	require.NoError(t, err)
	// Missing jobId in the body falls back to the requested one.
	assert.Equal(t, "job-3", result.JobID)
	assert.Len(t, result.Images, 2)
	assert.Equal(t, 4, result.CreditsUsed)
}

func TestUploadImage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/uploads", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "product.png", header.Filename)
		assert.Equal(t, "image/png", r.FormValue("contentType"))

		fmt.Fprint(w, `{"url":"https://cdn/uploads/product.png"}`)
	}))

	url, err := client.UploadImage(context.Background(), "product.png", "image/png", strings.NewReader("fake-png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/uploads/product.png", url)
}

func TestUploadImage_MissingURL(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))

	_, err := client.UploadImage(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeUploadFailed, stdErr.Code)
}

func TestUsage(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/usage", r.URL.Path)
		fmt.Fprint(w, `{"currentUsage":120,"limit":500}`)
	}))

	usage, err := client.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, usage.CurrentUsage)
	assert.Equal(t, 380, usage.Remaining())
}

func TestUsageRemaining_NeverNegative(t *testing.T) {
	u := &Usage{CurrentUsage: 600, Limit: 500}
	assert.Equal(t, 0, u.Remaining())
}

func TestListTemplates(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/templates", r.URL.Path)
		fmt.Fprint(w, `{"templates":[{"id":"tpl-1","name":"Bold Claim","kind":"static_ad"}]}`)
	}))

	templates, err := client.ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "tpl-1", templates[0].ID)
}

func TestTemplatePromptConfig(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/templates/tpl-1/prompt-config", r.URL.Path)
		fmt.Fprint(w, `{
			"prompts": [{"key":"headline","label":"Headline","required":true}]
		}`)
	}))

	pc, err := client.TemplatePromptConfig(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", pc.TemplateID)
	require.Len(t, pc.Prompts, 1)
	assert.True(t, pc.Prompts[0].Required)
}

func TestTemplatePromptConfig_NotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.TemplatePromptConfig(context.Background(), "missing")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeTemplateNotFound, stdErr.Code)
}
