package constants

// RunState is the canonical state for a pipeline run. Stages execute in the
// listed order with no backward transitions; a failure in any state is
// terminal for the run.
type RunState string

// Document pipeline states.
const (
	StateNormalizing RunState = "NORMALIZING"
	StateAssessing   RunState = "ASSESSING"
	StateEstimating  RunState = "ESTIMATING"
)

// Video pipeline states.
const (
	StateDownloading      RunState = "DOWNLOADING"
	StateUploading        RunState = "UPLOADING"
	StateAnalyzing        RunState = "ANALYZING"
	StateExtractingFrames RunState = "EXTRACTING_FRAMES"
)

// Shared terminal state.
const StateDone RunState = "DONE"
