package encoder

import (
	"fmt"
	"strings"
)

// OutputFileName derives the library file name from title, year, and the
// external identifier. Downstream media servers parse metadata back out of
// this shape, so it must stay stable: "Title (Year) {tmdb-ID} [IRILIS].mkv".
func OutputFileName(title string, year int, externalID int64) string {
	return fmt.Sprintf("%s (%d) {tmdb-%d} [IRILIS].mkv", sanitizeTitle(title), year, externalID)
}

// sanitizeTitle strips characters that would break a file path.
func sanitizeTitle(title string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "\x00", "")
	return strings.TrimSpace(replacer.Replace(title))
}
