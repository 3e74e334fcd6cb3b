package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSite_CaseCount(t *testing.T) {
	s := &Site{Abilities: []SiteAbility{
		{ID: "a", SubAbilities: []SiteSubAbility{
			{ID: "s1", Cases: []SiteCase{{ID: "c1"}, {ID: "c2"}}},
			{ID: "s2"},
		}},
		{ID: "b", SubAbilities: []SiteSubAbility{{ID: "s3", Cases: []SiteCase{{ID: "c3"}}}}},
	}}
	assert.Equal(t, 3, s.CaseCount())
	assert.Equal(t, 0, (&Site{}).CaseCount())
}

func TestFingerprint_Equal(t *testing.T) {
	a := FingerprintOf([]Artifact{{Path: "data.js", SHA256: "x"}, {Path: "audio/c/ref.mp3", SHA256: "y"}})
	b := FingerprintOf([]Artifact{{Path: "audio/c/ref.mp3", SHA256: "y"}, {Path: "data.js", SHA256: "x"}})
	assert.True(t, a.Equal(b))

	c := FingerprintOf([]Artifact{{Path: "data.js", SHA256: "z"}, {Path: "audio/c/ref.mp3", SHA256: "y"}})
	assert.False(t, a.Equal(c))

	d := FingerprintOf([]Artifact{{Path: "data.js", SHA256: "x"}})
	assert.False(t, a.Equal(d))
}
