package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformGuard_Check(t *testing.T) {
	g := NewPlatformGuard()

	tests := []struct {
		query    string
		wantForm string
		wantHit  bool
	}{
		{"F-16 engine start procedure", "f-16", true},
		{"boeing 747 hydraulic system", "747", true},
		{"Su-27 flight controls", "su-", true},
		{"M1 Abrams track tension", "m1 abrams", true},
		{"bradley fighting vehicle", "bradley", true},
		{"how do I migrate the database", "", false},
		{"shipping weight of the rotor blade", "", false},
		{"AH-1 oil pressure", "", false},
		{"RC-12 fuel tank capacity", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		form, hit := g.Check(tt.query)
		assert.Equal(t, tt.wantHit, hit, "query %q", tt.query)
		assert.Equal(t, tt.wantForm, form, "query %q", tt.query)
	}
}

func TestPlatformGuard_FirstFormWins(t *testing.T) {
	g := NewPlatformGuardWithForms([]string{"stryker", "f-35"})

	form, hit := g.Check("compare the F-35 and the Stryker")
	assert.True(t, hit)
	assert.Equal(t, "stryker", form)
}

func TestPlatformGuard_IgnoresBlankForms(t *testing.T) {
	g := NewPlatformGuardWithForms([]string{"", "  ", "tank"})

	_, hit := g.Check("anything at all")
	assert.False(t, hit)

	form, hit := g.Check("tank gunnery")
	assert.True(t, hit)
	assert.Equal(t, "tank", form)
}
