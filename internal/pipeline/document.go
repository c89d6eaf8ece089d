// Package pipeline orchestrates the document and video flows end to end.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ostegm/contractor-app/constants"
	"github.com/ostegm/contractor-app/internal/llm"
	"github.com/ostegm/contractor-app/internal/normalize"
	"github.com/ostegm/contractor-app/pkg/project"
)

// DocumentRequest is a single run of the document pipeline. ProjectInfo,
// PriorEstimate and RequestedChanges are optional; supplying a prior
// estimate with requested changes turns the run into a revision.
type DocumentRequest struct {
	ProjectInfo      string
	Files            []project.InputDescriptor
	PriorEstimate    *project.Estimate
	RequestedChanges string
}

// DocumentResult carries the final estimate plus the intermediate
// assessment and the raw model JSON for diagnostics.
type DocumentResult struct {
	Assessment  string
	Estimate    project.Estimate
	RawEstimate []byte
}

// DocumentPipeline runs normalize, assess and estimate in sequence. Any
// stage failure aborts the run.
type DocumentPipeline struct {
	normalizer *normalize.Normalizer
	assessor   llm.Assessor
	estimator  llm.Estimator
	log        *slog.Logger
}

func NewDocumentPipeline(normalizer *normalize.Normalizer, assessor llm.Assessor, estimator llm.Estimator, logger *slog.Logger) *DocumentPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentPipeline{normalizer: normalizer, assessor: assessor, estimator: estimator, log: logger}
}

// Run executes the full document flow for one request.
func (p *DocumentPipeline) Run(ctx context.Context, req DocumentRequest) (*DocumentResult, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID)
	log.Info("pipeline.document.start", "files", len(req.Files), "revision", req.PriorEstimate != nil)

	log.Info("pipeline.document.state", "state", string(constants.StateNormalizing))
	files, err := p.normalizer.NormalizeAll(ctx, req.Files)
	if err != nil {
		return nil, fmt.Errorf("normalizing inputs: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no processable input files")
	}

	log.Info("pipeline.document.state", "state", string(constants.StateAssessing))
	assessment, err := p.assessor.Assess(ctx, llm.AssessRequest{ProjectInfo: req.ProjectInfo, Files: files})
	if err != nil {
		return nil, fmt.Errorf("assessing project: %w", err)
	}

	log.Info("pipeline.document.state", "state", string(constants.StateEstimating))
	estimate, raw, err := p.estimator.GenerateEstimate(ctx, llm.EstimateRequest{
		Assessment:       assessment,
		PriorEstimate:    req.PriorEstimate,
		RequestedChanges: req.RequestedChanges,
	})
	if err != nil {
		return nil, fmt.Errorf("generating estimate: %w", err)
	}

	log.Info("pipeline.document.state", "state", string(constants.StateDone),
		"items", len(estimate.EstimateItems), "confidence", string(estimate.ConfidenceLevel))
	return &DocumentResult{Assessment: assessment, Estimate: estimate, RawEstimate: raw}, nil
}
