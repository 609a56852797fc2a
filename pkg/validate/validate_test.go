package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidVideoFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"mp4", "meeting.mp4", true},
		{"uppercase extension", "MEETING.MP4", true},
		{"mov", "clip.mov", true},
		{"webm", "clip.webm", true},
		{"mkv", "clip.mkv", true},
		{"wmv", "clip.wmv", true},
		{"flv", "clip.flv", true},
		{"avi", "clip.avi", true},
		{"pdf rejected", "notes.pdf", false},
		{"exe rejected", "virus.exe", false},
		{"no extension", "video", false},
		{"empty", "", false},
		{"extension only in middle", "video.mp4.txt", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVideoFile(tt.filename))
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("0b49a414-6d4e-4db3-8b3e-31c91dbc2f5d"))
	assert.True(t, IsValidUUID("0B49A414-6D4E-4DB3-8B3E-31C91DBC2F5D"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("0b49a414-6d4e-4db3-8b3e-31c91dbc2f5"))
	assert.False(t, IsValidUUID("0b49a4146d4e4db38b3e31c91dbc2f5d"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "etcpasswd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "video.mp4", SanitizeFilename("video.mp4"))
	assert.Equal(t, "video.mp4", SanitizeFilename("  video.mp4. "))
	assert.Equal(t, "ab.mp4", SanitizeFilename(`a<b>:"|?*.mp4`))
	assert.Equal(t, "", SanitizeFilename(""))

	long := strings.Repeat("a", 300) + ".mp4"
	got := SanitizeFilename(long)
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, strings.HasSuffix(got, ".mp4"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  ", 0))
	assert.Equal(t, "scriptalert(1)/script", SanitizeString(`<script>alert('1')</script>`, 0))
	assert.Equal(t, "abc", SanitizeString("abcdef", 3))
	assert.Equal(t, "", SanitizeString("", 10))
}
