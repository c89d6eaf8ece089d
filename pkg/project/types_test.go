package project

import "testing"

func TestInputFileValidateSingleSlot(t *testing.T) {
	if err := NewTextFile("n", "text/plain", "", "", "hello").Validate(); err != nil {
		t.Errorf("text file should be valid: %v", err)
	}
	if err := NewImageFile("n", "image/png", "", "", []byte{1}).Validate(); err != nil {
		t.Errorf("image file should be valid: %v", err)
	}
	if err := NewAudioFile("n", "audio/mpeg", "", "", []byte{1}).Validate(); err != nil {
		t.Errorf("audio file should be valid: %v", err)
	}

	empty := InputFile{Name: "n", MIMEType: "text/plain"}
	if err := empty.Validate(); err == nil {
		t.Error("file with no content slot should be invalid")
	}

	// an empty remote text file is still a text file
	if err := NewTextFile("blank.txt", "text/plain", "", "", "").Validate(); err != nil {
		t.Errorf("empty text file should be valid: %v", err)
	}

	double := NewTextFile("n", "text/plain", "", "", "hello")
	double.Image = &BinaryContent{Data: []byte{1}, MediaType: "image/png"}
	if err := double.Validate(); err == nil {
		t.Error("file with two content slots should be invalid")
	}
}

func TestKeyMomentFilename(t *testing.T) {
	m := KeyMoment{TimestampSeconds: 7.254, Description: "d"}
	if got := m.Filename(); got != "frame_ts_7.25.png" {
		t.Errorf("default filename = %q", got)
	}

	m.SuggestedFilename = "crawlspace.png"
	if got := m.Filename(); got != "crawlspace.png" {
		t.Errorf("suggested filename not preferred: %q", got)
	}
}
