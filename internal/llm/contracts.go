// Package llm defines the model-service contracts the pipelines depend on
// and the schema used to validate structured estimate output.
package llm

import (
	"context"

	"github.com/ostegm/contractor-app/pkg/project"
)

// AssessRequest carries the normalized files plus optional prior project
// context into the assessment stage.
type AssessRequest struct {
	// ProjectInfo is prior context for the project, if any.
	ProjectInfo string
	// Files is the ordered canonical input list; order must match the
	// input descriptor order for deterministic prompts.
	Files []project.InputFile
}

// Assessor synthesizes a textual project assessment from all normalized
// inputs. Treated as opaque.
type Assessor interface {
	Assess(ctx context.Context, req AssessRequest) (string, error)
}

// EstimateRequest carries the assessment into the estimation stage. Prior
// estimate and requested changes are both optional; when both are absent a
// first-pass estimate is produced.
type EstimateRequest struct {
	Assessment       string
	PriorEstimate    *project.Estimate
	RequestedChanges string
}

// Estimator extracts a structured cost estimate from an assessment.
type Estimator interface {
	// GenerateEstimate returns the parsed estimate along with the raw model
	// JSON for diagnostics.
	GenerateEstimate(ctx context.Context, req EstimateRequest) (project.Estimate, []byte, error)
}

// VideoAnalyzer analyzes an uploaded remote video reference into a detailed
// description and ordered key moments.
type VideoAnalyzer interface {
	AnalyzeVideo(ctx context.Context, fileRef FileRef, videoName, videoDescription string) (project.VideoAnalysis, error)
}

// FileRef identifies a remotely uploaded file.
type FileRef struct {
	Name  string
	URI   string
	State string
}

// VideoUploader pushes a local video file to the analysis service and
// reports when it is ready for use.
type VideoUploader interface {
	// Upload sends the file and blocks until the remote copy is active,
	// within the configured attempt bound.
	Upload(ctx context.Context, localPath string) (FileRef, error)
	// Delete removes the remote file once analysis is complete.
	Delete(ctx context.Context, ref FileRef) error
}
