package domain

// SessionInfo summarizes one recorded session directory in the collected tree.
type SessionInfo struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Lang      string `json:"lang"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	HasRef    bool   `json:"has_ref"`
	TurnCount int    `json:"turn_count"`
}

// Transcript is the text content of a session plus which audio files exist.
type Transcript struct {
	Prefix string
	Suffix string
	HasRef bool
	Turns  []TranscriptTurn
}

type TranscriptTurn struct {
	UserText      string
	AssistantText string
	HasAudio      bool
}

// SessionDetail is the editor's view of a session. Audio fields are paths
// relative to the collected root.
type SessionDetail struct {
	Path   string              `json:"path"`
	System SessionDetailSystem `json:"system"`
	Turns  []SessionDetailTurn `json:"turns"`
}

type SessionDetailSystem struct {
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	RefAudio string `json:"ref_audio,omitempty"`
}

type SessionDetailTurn struct {
	UserText       string `json:"user_text,omitempty"`
	AssistantText  string `json:"assistant_text"`
	AssistantAudio string `json:"assistant_audio,omitempty"`
}

// SessionSummary is a scaffold candidate produced by scanning a category.
type SessionSummary struct {
	SessionID string
	Summary   string
	Turns     int
}
