package domain

import "time"

type BuildStatus string

const (
	BuildRunning   BuildStatus = "running"
	BuildSucceeded BuildStatus = "succeeded"
	BuildFailed    BuildStatus = "failed"
)

// BuildRun is one recorded invocation of the build pipeline.
type BuildRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     BuildStatus
	CaseCount  int
	Error      string
	Artifacts  []Artifact
}

// Artifact is one generated output file, addressed relative to the output dir.
type Artifact struct {
	Path   string
	SHA256 string
	Size   int64
}

// Fingerprint identifies an artifact set independent of ordering.
type Fingerprint map[string]string

// FingerprintOf indexes artifacts by path.
func FingerprintOf(artifacts []Artifact) Fingerprint {
	fp := make(Fingerprint, len(artifacts))
	for _, a := range artifacts {
		fp[a.Path] = a.SHA256
	}
	return fp
}

// Equal reports whether both sets contain the same paths with the same digests.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if len(f) != len(other) {
		return false
	}
	for path, sum := range f {
		if other[path] != sum {
			return false
		}
	}
	return true
}
