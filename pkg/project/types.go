// Package project holds the wire types shared between the normalization,
// model, and pipeline layers.
package project

import (
	"fmt"

	"github.com/ostegm/contractor-app/constants"
)

// InputDescriptor is a caller-supplied reference to one project file, by
// URL, prior to normalization. Immutable as received.
type InputDescriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // declared MIME type, e.g. "image/png"
	Description string `json:"description,omitempty"`
	SourceURL   string `json:"source_url,omitempty"`
}

// Category resolves the declared MIME type to its media category.
func (d InputDescriptor) Category() constants.MediaCategory {
	return constants.CategoryFromMIME(d.Type)
}

// BinaryContent is decoded binary content tagged with its media type.
type BinaryContent struct {
	Data      []byte
	MediaType string
}

// InputFile is the canonical, model-ready representation of one unit of
// content. Exactly one of Text, Image, or Audio is populated; use the
// constructors below and check Validate before handing a hand-built value
// to the pipeline. Never mutated after creation.
type InputFile struct {
	Name        string
	MIMEType    string
	Description string

	// SourceURL is retained for provenance only; content is never re-read
	// from it. PDF-derived pages have no independent remote location and
	// leave it empty.
	SourceURL string

	Text  string
	Image *BinaryContent
	Audio *BinaryContent

	// set by NewTextFile so a legitimately empty remote text file still
	// counts as holding the text slot
	hasText bool
}

// NewTextFile builds a canonical text file.
func NewTextFile(name, mimeType, description, sourceURL, text string) InputFile {
	return InputFile{Name: name, MIMEType: mimeType, Description: description, SourceURL: sourceURL, Text: text, hasText: true}
}

// NewImageFile builds a canonical image file.
func NewImageFile(name, mimeType, description, sourceURL string, data []byte) InputFile {
	return InputFile{
		Name:        name,
		MIMEType:    mimeType,
		Description: description,
		SourceURL:   sourceURL,
		Image:       &BinaryContent{Data: data, MediaType: mimeType},
	}
}

// NewAudioFile builds a canonical audio file.
func NewAudioFile(name, mimeType, description, sourceURL string, data []byte) InputFile {
	return InputFile{
		Name:        name,
		MIMEType:    mimeType,
		Description: description,
		SourceURL:   sourceURL,
		Audio:       &BinaryContent{Data: data, MediaType: mimeType},
	}
}

// HasText reports whether the text slot is populated. Non-empty text counts
// even on a hand-built value that skipped the constructor.
func (f InputFile) HasText() bool {
	return f.hasText || f.Text != ""
}

// Validate enforces the single-content-slot invariant.
func (f InputFile) Validate() error {
	slots := 0
	if f.HasText() {
		slots++
	}
	if f.Image != nil {
		slots++
	}
	if f.Audio != nil {
		slots++
	}
	if slots != 1 {
		return fmt.Errorf("input file %q: expected exactly one content slot, found %d", f.Name, slots)
	}
	return nil
}

// ConfidenceLevel is the closed confidence vocabulary for estimates.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "High"
	ConfidenceMedium ConfidenceLevel = "Medium"
	ConfidenceLow    ConfidenceLevel = "Low"
)

// ConfidenceLevels lists the allowed values for schema enums.
func ConfidenceLevels() []string {
	return []string{string(ConfidenceHigh), string(ConfidenceMedium), string(ConfidenceLow)}
}

// EstimateItem is one line item of a structured estimate.
type EstimateItem struct {
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Subcategory     string  `json:"subcategory,omitempty"`
	CostRangeMin    float64 `json:"cost_range_min"`
	CostRangeMax    float64 `json:"cost_range_max"`
	Unit            string  `json:"unit,omitempty"`
	Quantity        float64 `json:"quantity,omitempty"`
	Assumptions     string  `json:"assumptions,omitempty"`
	ConfidenceScore string  `json:"confidence_score,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// Estimate is the structured cost estimate extracted from a project
// assessment.
type Estimate struct {
	ProjectDescription    string          `json:"project_description"`
	EstimatedTotalMin     float64         `json:"estimated_total_min"`
	EstimatedTotalMax     float64         `json:"estimated_total_max"`
	EstimatedTimelineDays float64         `json:"estimated_timeline_days,omitempty"`
	ConfidenceLevel       ConfidenceLevel `json:"confidence_level"`
	KeyConsiderations     []string        `json:"key_considerations"`
	EstimateItems         []EstimateItem  `json:"estimate_items"`
	NextSteps             []string        `json:"next_steps"`
	MissingInformation    []string        `json:"missing_information"`
	KeyRisks              []string        `json:"key_risks"`
}

// KeyMoment is a model-identified timestamp of interest within a video.
// Read-only once produced.
type KeyMoment struct {
	TimestampSeconds  float64 `json:"timestamp_s"`
	SuggestedFilename string  `json:"filename,omitempty"`
	Description       string  `json:"description"`
}

// Filename derives the storage-ready name for the extracted frame: the
// suggested name when the model provided one, otherwise a timestamp-based
// default.
func (m KeyMoment) Filename() string {
	if m.SuggestedFilename != "" {
		return m.SuggestedFilename
	}
	return fmt.Sprintf("frame_ts_%.2f.png", m.TimestampSeconds)
}

// VideoAnalysis is the output of the video analysis service: a detailed
// description plus the ordered key moments worth extracting as stills.
type VideoAnalysis struct {
	Description string      `json:"description"`
	KeyMoments  []KeyMoment `json:"key_moments"`
}

// ExtractedFrame pairs a key moment with its decoded PNG bytes. Transient:
// it exists only between extraction and upload.
type ExtractedFrame struct {
	Moment   KeyMoment
	PNG      []byte
	Filename string
}
