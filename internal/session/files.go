package session

import (
	"fmt"
	"strings"
)

const (
	prefixFile   = "system_prefix.txt"
	suffixFile   = "system_suffix.txt"
	refAudioFile = "system_ref_audio.mp3"

	sessionDirPrefix = "session_"
)

// UserTranscriptFile is the ASR transcript of the user's audio for turn i.
func UserTranscriptFile(i int) string { return fmt.Sprintf("%03d_user_audio0.asr.txt", i) }

// AssistantTextFile is the assistant's reply text for turn i.
func AssistantTextFile(i int) string { return fmt.Sprintf("%03d_assistant.txt", i) }

// AssistantAudioFile is the assistant's spoken reply for turn i.
func AssistantAudioFile(i int) string { return fmt.Sprintf("%03d_assistant_audio0.mp3", i) }

// RefAudioFile is the reference voice clip of a session.
func RefAudioFile() string { return refAudioFile }

// IsSessionDir reports whether a directory name follows the recorder's
// session_<date>_<time>_<hash> convention.
func IsSessionDir(name string) bool {
	return strings.HasPrefix(name, sessionDirPrefix)
}

// Timestamp extracts "<date>_<time>" from a session directory name, or ""
// when the name has fewer than three underscore-separated parts.
func Timestamp(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[1:3], "_")
}
