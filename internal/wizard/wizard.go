// internal/wizard/wizard.go
package wizard

import (
	"context"
	"io"

	"adgen-orchestrator/internal/avatars"
	"adgen-orchestrator/internal/common/config"
	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/common/logger"
	"adgen-orchestrator/internal/common/validation"
	"adgen-orchestrator/internal/jobs"
	"adgen-orchestrator/pkg/registry"
)

// Step is the position in the static-ad generation flow.
type Step int

const (
	StepUpload Step = iota
	StepDetails
	StepReview
	StepGenerating
	StepDone
)

// Uploader is the slice of the API client the flow needs for file uploads.
type Uploader interface {
	UploadImage(ctx context.Context, filename, contentType string, content io.Reader) (string, error)
}

// Flow drives one static-ad generation: upload a product image, pick a
// template and an avatar/angle selection, review, then submit and watch the
// job to completion. Validation problems block submission before any request
// reaches the backend.
type Flow struct {
	step            Step
	productImageURL string
	templateID      string
	imageCount      int
	selection       *avatars.Selection

	uploadCfg config.UploadConfig
	uploader  Uploader
	submitter *jobs.Submitter
	poller    *jobs.Poller
	templates *registry.TemplateRegistry // optional
	logger    logger.Logger

	job    *jobs.Job
	images *jobs.ImageSet
}

func NewFlow(uploader Uploader, submitter *jobs.Submitter, poller *jobs.Poller, templates *registry.TemplateRegistry, uploadCfg config.UploadConfig, log logger.Logger) *Flow {
	return &Flow{
		imageCount: 4,
		selection:  avatars.NewMultiSelection(),
		uploadCfg:  uploadCfg,
		uploader:   uploader,
		submitter:  submitter,
		poller:     poller,
		templates:  templates,
		logger:     log.WithFields(map[string]interface{}{"component": "static-ad-wizard"}),
	}
}

// Step returns the current flow step.
func (f *Flow) Step() Step {
	return f.step
}

// Selection exposes the avatar/angle selection state.
func (f *Flow) Selection() *avatars.Selection {
	return f.selection
}

// SetTemplate records the chosen template. With a catalog present the ID must
// resolve to a known template.
func (f *Flow) SetTemplate(templateID string) error {
	if f.templates != nil {
		if _, err := f.templates.Get(templateID); err != nil {
			return err
		}
	}
	f.templateID = templateID
	return nil
}

// SetImageCount records how many variants to generate.
func (f *Flow) SetImageCount(n int) {
	if n > 0 {
		f.imageCount = n
	}
}

// ProductImageURL returns the uploaded image URL, empty before upload.
func (f *Flow) ProductImageURL() string {
	return f.productImageURL
}

// Upload validates the file client-side and posts it to the backend. On
// success the flow advances to the details step.
func (f *Flow) Upload(ctx context.Context, filename, contentType string, size int64, content io.Reader) error {
	if size > f.uploadCfg.MaxSizeBytes {
		return stderrors.NewValidationFailedError("image exceeds the maximum upload size")
	}
	if !f.typeAllowed(contentType) {
		return stderrors.NewValidationFailedError("unsupported image type: " + contentType)
	}

	url, err := f.uploader.UploadImage(ctx, filename, contentType, content)
	if err != nil {
		return err
	}

	f.productImageURL = url
	if f.step == StepUpload {
		f.step = StepDetails
	}
	return nil
}

func (f *Flow) typeAllowed(contentType string) bool {
	for _, t := range f.uploadCfg.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Review validates the assembled parameters and advances to the review step.
// A missing upload or an empty angle selection blocks here, before submission.
func (f *Flow) Review() error {
	if f.productImageURL == "" {
		return stderrors.NewValidationFailedError("a product image upload is required")
	}
	if !f.selection.HasAngles() {
		return stderrors.NewValidationFailedError("at least one marketing angle must be selected")
	}

	if result := validation.ValidateStaticAdParams(f.params()); !result.Valid {
		return stderrors.NewValidationFailedError(result.Error())
	}

	f.step = StepReview
	return nil
}

func (f *Flow) params() map[string]interface{} {
	angleIdx := f.selection.AngleIndexes()
	angles := make([]interface{}, len(angleIdx))
	for i, v := range angleIdx {
		angles[i] = v
	}
	return map[string]interface{}{
		"productImageUrl": f.productImageURL,
		"templateId":      f.templateID,
		"avatarIndex":     f.selection.AvatarIndex(),
		"angleIndexes":    angles,
		"imageCount":      f.imageCount,
	}
}

// Generate submits the job and polls it to completion, merging incremental
// images into the flow as they appear. On terminal failure the flow resets to
// the review step so the user can retry.
func (f *Flow) Generate(ctx context.Context, onUpdate func(*jobs.StatusUpdate)) (*jobs.Result, error) {
	if err := f.Review(); err != nil {
		return nil, err
	}

	req := &jobs.SubmitRequest{
		Kind:   jobs.KindStaticAd,
		Params: f.params(),
	}

	jobID, err := f.submitter.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	f.job = &jobs.Job{ID: jobID, Kind: jobs.KindStaticAd}
	f.images = jobs.NewImageSet(f.imageCount)
	f.step = StepGenerating

	f.logger.Info("static ad job submitted", map[string]interface{}{
		"jobId":      jobID,
		"imageCount": f.imageCount,
	})

	result, err := f.poller.Wait(ctx, jobID, jobs.KindStaticAd, func(u *jobs.StatusUpdate) {
		f.job.Apply(u)
		f.images.Merge(u.Images)
		if onUpdate != nil {
			onUpdate(u)
		}
	})
	if err != nil {
		f.step = StepReview
		return nil, err
	}

	f.images.Merge(result.Images)
	f.step = StepDone
	return result, nil
}

// Job returns the live view of the submitted job, nil before submission.
// Status updates are folded in as polling delivers them.
func (f *Flow) Job() *jobs.Job {
	return f.job
}

// JobID returns the submitted job's identifier, empty before submission.
func (f *Flow) JobID() string {
	if f.job == nil {
		return ""
	}
	return f.job.ID
}

// Images returns the images accumulated so far, deduplicated by URL.
func (f *Flow) Images() []jobs.GeneratedImage {
	if f.images == nil {
		return nil
	}
	return f.images.Images
}

// PendingImages returns how many expected images have not arrived yet.
func (f *Flow) PendingImages() int {
	if f.images == nil {
		return 0
	}
	return f.images.Pending
}

// Reset returns the flow to its initial state.
func (f *Flow) Reset() {
	f.step = StepUpload
	f.productImageURL = ""
	f.templateID = ""
	f.imageCount = 4
	f.job = nil
	f.images = nil
	f.selection.Close()
}
