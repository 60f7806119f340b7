package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAr_LatinPassthrough(t *testing.T) {
	for _, s := range []string{"", "ABC-1234", "accident_report_12.pdf", "50%", "printed at 2025-03-14"} {
		assert.Equal(t, s, ar(s))
	}
}

func TestAr_ReshapesArabic(t *testing.T) {
	src := "تقرير حادث مركبة"
	shaped := ar(src)

	// Shaping rewrites letters into presentation forms
	assert.NotEqual(t, src, shaped)
	assert.NotEmpty(t, shaped)
}

func TestContainsArabic(t *testing.T) {
	assert.True(t, containsArabic("مرفوض"))
	assert.True(t, containsArabic("RPT-5512 مرفق"))
	assert.False(t, containsArabic("RPT-5512"))
}
