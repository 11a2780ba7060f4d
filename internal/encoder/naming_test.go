package encoder

import "testing"

func TestOutputFileName(t *testing.T) {
	got := OutputFileName("Sample Movie", 2020, 42)
	want := "Sample Movie (2020) {tmdb-42} [IRILIS].mkv"
	if got != want {
		t.Fatalf("OutputFileName = %q, want %q", got, want)
	}
}

func TestOutputFileNameSanitizesSeparators(t *testing.T) {
	got := OutputFileName("Face/Off", 1997, 754)
	want := "Face-Off (1997) {tmdb-754} [IRILIS].mkv"
	if got != want {
		t.Fatalf("OutputFileName = %q, want %q", got, want)
	}
}
