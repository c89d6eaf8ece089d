package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ostegm/contractor-app/constants"
	"github.com/ostegm/contractor-app/internal/llm"
	"github.com/ostegm/contractor-app/internal/storage"
	"github.com/ostegm/contractor-app/pkg/project"
)

// Downloader streams a remote file to a local path.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) error
}

// FrameExtractor decodes stills for the given key moments.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, moments []project.KeyMoment) ([]project.ExtractedFrame, error)
}

// VideoRequest is a single run of the video pipeline.
type VideoRequest struct {
	Video project.InputDescriptor
}

// VideoResult carries the analysis plus the uploaded frame files. Each
// frame's SourceURL is its storage reference.
type VideoResult struct {
	Analysis project.VideoAnalysis
	Frames   []project.InputFile
}

// VideoPipeline downloads a video, has it analyzed remotely, extracts
// stills at the reported key moments, and uploads them to frame storage.
type VideoPipeline struct {
	downloader Downloader
	uploader   llm.VideoUploader
	analyzer   llm.VideoAnalyzer
	extractor  FrameExtractor
	store      storage.Uploader
	tempDir    string
	log        *slog.Logger
}

func NewVideoPipeline(downloader Downloader, uploader llm.VideoUploader, analyzer llm.VideoAnalyzer, extractor FrameExtractor, store storage.Uploader, tempDir string, logger *slog.Logger) *VideoPipeline {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VideoPipeline{
		downloader: downloader,
		uploader:   uploader,
		analyzer:   analyzer,
		extractor:  extractor,
		store:      store,
		tempDir:    tempDir,
		log:        logger,
	}
}

// Run executes the full video flow for one request. The local temp copy is
// removed on every exit path, success or failure.
func (p *VideoPipeline) Run(ctx context.Context, req VideoRequest) (*VideoResult, error) {
	runID := uuid.NewString()
	log := p.log.With("run_id", runID, "video", req.Video.Name)
	log.Info("pipeline.video.start")

	if req.Video.SourceURL == "" {
		return nil, fmt.Errorf("video %s has no source url, cannot process", req.Video.Name)
	}

	log.Info("pipeline.video.state", "state", string(constants.StateDownloading))
	localPath := filepath.Join(p.tempDir, runID+".mp4")
	// registered before Download: a failed transfer may still have created
	// the file, and the local copy must be gone on every exit path
	defer p.removeTemp(log, localPath)
	if err := p.downloader.Download(ctx, req.Video.SourceURL, localPath); err != nil {
		return nil, fmt.Errorf("downloading video: %w", err)
	}

	log.Info("pipeline.video.state", "state", string(constants.StateUploading))
	ref, err := p.uploader.Upload(ctx, localPath)
	if err != nil {
		return nil, fmt.Errorf("uploading video: %w", err)
	}

	log.Info("pipeline.video.state", "state", string(constants.StateAnalyzing), "remote", ref.Name)
	analysis, err := p.analyzer.AnalyzeVideo(ctx, ref, req.Video.Name, req.Video.Description)
	if delErr := p.uploader.Delete(context.WithoutCancel(ctx), ref); delErr != nil {
		log.Warn("pipeline.video.remote_delete_failed", "remote", ref.Name, "error", delErr)
	}
	if err != nil {
		return nil, fmt.Errorf("analyzing video: %w", err)
	}
	log.Info("pipeline.video.analyzed", "key_moments", len(analysis.KeyMoments))

	log.Info("pipeline.video.state", "state", string(constants.StateExtractingFrames))
	extracted, err := p.extractor.ExtractFrames(ctx, localPath, analysis.KeyMoments)
	if err != nil {
		return nil, fmt.Errorf("extracting frames: %w", err)
	}

	frames, err := p.uploadFrames(ctx, log, extracted)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline.video.state", "state", string(constants.StateDone), "frames", len(frames))
	return &VideoResult{Analysis: analysis, Frames: frames}, nil
}

func (p *VideoPipeline) uploadFrames(ctx context.Context, log *slog.Logger, extracted []project.ExtractedFrame) ([]project.InputFile, error) {
	var frames []project.InputFile
	for _, frame := range extracted {
		ref, err := p.store.Put(ctx, frame.Filename, bytes.NewReader(frame.PNG), constants.MIMEImagePNG)
		if err != nil {
			return nil, fmt.Errorf("uploading frame %s: %w", frame.Filename, err)
		}
		log.Debug("pipeline.video.frame_uploaded", "frame", frame.Filename, "ref", ref)
		frames = append(frames, project.NewImageFile(frame.Filename, constants.MIMEImagePNG, frame.Moment.Description, ref, frame.PNG))
	}
	return frames, nil
}

// removeTemp deletes the local copy; a missing file is not an error since
// cleanup may race an earlier removal.
func (p *VideoPipeline) removeTemp(log *slog.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("pipeline.video.temp_cleanup_failed", "path", path, "error", err)
	}
}
