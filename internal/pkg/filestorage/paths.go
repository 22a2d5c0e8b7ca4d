package filestorage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SanitizeFilename reduces name to its base name and replaces every character
// outside [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DocumentPath builds <folder>/<studentId>_<unixmillis>_<filename>
func DocumentPath(folder string, studentID uuid.UUID, now time.Time, filename string) string {
	return fmt.Sprintf("%s/%s_%d_%s", folder, studentID, now.UnixMilli(), SanitizeFilename(filename))
}
