// Package validate holds stateless input validation and sanitization helpers.
package validate

import (
	"path/filepath"
	"regexp"
	"strings"
)

// MaxTitleLength caps meeting titles.
const MaxTitleLength = 255

// allowedVideoExtensions is the upload allow-list (lowercase, with dot).
var allowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
}

var (
	uuidPattern      = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	unsafeNameChars  = regexp.MustCompile(`[<>:"/\\|?*]`)
	unsafeValueChars = regexp.MustCompile(`[<>"']`)
)

// IsValidVideoFile reports whether the filename carries an allowed video extension.
func IsValidVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedVideoExtensions[ext]
}

// AllowedVideoExtensions returns the allow-list as a display string ("mp4, avi, ...").
func AllowedVideoExtensions() string {
	return "mp4, avi, mov, mkv, wmv, flv, webm"
}

// IsValidUUID reports whether s is a well-formed UUID.
func IsValidUUID(s string) bool {
	return uuidPattern.MatchString(strings.ToLower(s))
}

// SanitizeString trims whitespace, strips markup-sensitive characters and
// truncates to maxLength (0 means no limit).
func SanitizeString(value string, maxLength int) string {
	if value == "" {
		return ""
	}
	sanitized := unsafeValueChars.ReplaceAllString(strings.TrimSpace(value), "")
	if maxLength > 0 && len(sanitized) > maxLength {
		sanitized = sanitized[:maxLength]
	}
	return sanitized
}

// SanitizeFilename strips path separators and other unsafe characters from a
// filename and caps it at 255 bytes, preserving the extension.
func SanitizeFilename(filename string) string {
	if filename == "" {
		return ""
	}
	sanitized := unsafeNameChars.ReplaceAllString(filename, "")
	sanitized = strings.Trim(sanitized, ". ")
	if len(sanitized) > 255 {
		ext := filepath.Ext(sanitized)
		name := strings.TrimSuffix(sanitized, ext)
		keep := 255 - len(ext)
		if keep < 0 {
			keep = 0
		}
		if len(name) > keep {
			name = name[:keep]
		}
		sanitized = name + ext
	}
	return sanitized
}
