package terminology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeSet_Contains(t *testing.T) {
	set := NewSet("mammography", "bilateral mammography", RoleNumerator,
		Code{System: "CPT", Code: "77067"},
		Code{System: "HCPCS", Code: "G0202"},
	)

	assert.True(t, set.Contains("CPT", "77067"))
	assert.True(t, set.Contains("HCPCS", "G0202"))
	assert.False(t, set.Contains("CPT", "G0202"), "system and code match together, not independently")
	assert.False(t, set.Contains("CPT", "99213"))
	assert.False(t, set.Contains("", ""))
	assert.Equal(t, 2, set.Len())
}

func TestCodeSet_CodesSorted(t *testing.T) {
	set := NewSet("x", "x", RoleOther,
		Code{System: "ICD-10-PCS", Code: "0HTV0ZZ"},
		Code{System: "CPT", Code: "77067"},
		Code{System: "CPT", Code: "77065"},
	)

	assert.Equal(t, []Code{
		{System: "CPT", Code: "77065"},
		{System: "CPT", Code: "77067"},
		{System: "ICD-10-PCS", Code: "0HTV0ZZ"},
	}, set.Codes())
}

func TestRegistry_Codes(t *testing.T) {
	reg, err := NewRegistry(
		NewSet("mammography", "bilateral mammography", RoleNumerator, Code{System: "CPT", Code: "77067"}),
	)
	require.NoError(t, err)

	set, err := reg.Codes("mammography")
	require.NoError(t, err)
	assert.Equal(t, "bilateral mammography", set.Label)
	assert.Equal(t, RoleNumerator, set.Role)

	_, err = reg.Codes("nonexistent")
	var uerr *UnknownCategoryError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "nonexistent", uerr.Category)
}

func TestRegistry_Categories(t *testing.T) {
	reg, err := NewRegistry(
		NewSet("zeta", "z", RoleOther, Code{System: "X", Code: "1"}),
		NewSet("alpha", "a", RoleOther, Code{System: "X", Code: "2"}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, reg.Categories())
}

func TestNewRegistry_DuplicateCategory(t *testing.T) {
	_, err := NewRegistry(
		NewSet("mammography", "a", RoleNumerator, Code{System: "CPT", Code: "77067"}),
		NewSet("mammography", "b", RoleNumerator, Code{System: "CPT", Code: "77066"}),
	)
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrCodeDuplicateCategory, lerr.Code)
}

func TestNewRegistry_NumeratorExclusionOverlap(t *testing.T) {
	_, err := NewRegistry(
		NewSet("mammography", "a", RoleNumerator, Code{System: "CPT", Code: "77067"}),
		NewSet("mastectomy", "b", RoleExclusion,
			Code{System: "ICD-10-CM", Code: "Z90.13"},
			Code{System: "CPT", Code: "77067"},
		),
	)
	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, ErrCodeOverlap, lerr.Code)
	assert.Contains(t, lerr.Message, "77067")
}

// Overlap between two exclusion sets, or with a role-less set, is fine.
func TestNewRegistry_AllowsBenignOverlap(t *testing.T) {
	_, err := NewRegistry(
		NewSet("left", "l", RoleExclusion, Code{System: "ICD-10-CM", Code: "Z90.12"}),
		NewSet("any-mastectomy", "m", RoleExclusion, Code{System: "ICD-10-CM", Code: "Z90.12"}),
		NewSet("audit", "audit", RoleOther, Code{System: "ICD-10-CM", Code: "Z90.12"}),
	)
	assert.NoError(t, err)
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Code: ErrCodeOverlap, Message: "boom"}
	assert.Equal(t, "TERMINOLOGY_OVERLAP: boom", err.Error())
}
