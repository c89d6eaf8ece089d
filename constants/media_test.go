package constants

import "testing"

func TestCategoryFromMIME(t *testing.T) {
	cases := []struct {
		mime string
		want MediaCategory
	}{
		{"application/pdf", MediaPDF},
		{"APPLICATION/PDF", MediaPDF},
		{" application/pdf ", MediaPDF},
		{"image/png", MediaImage},
		{"image/jpeg", MediaImage},
		{"audio/mpeg", MediaAudio},
		{"audio/wav", MediaAudio},
		{"text/plain", MediaText},
		{"text/markdown", MediaText},
		{"video/mp4", MediaVideo},
		{"application/zip", MediaUnsupported},
		{"application/octet-stream", MediaUnsupported},
		{"", MediaUnsupported},
	}
	for _, tc := range cases {
		if got := CategoryFromMIME(tc.mime); got != tc.want {
			t.Errorf("CategoryFromMIME(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}
