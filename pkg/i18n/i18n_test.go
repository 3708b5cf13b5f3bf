package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizer_PicksLanguage(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Receipt", tr.Localizer("en").T("receipt.title", nil))
	assert.Equal(t, "Resit", tr.Localizer("ms-MY,ms;q=0.9").T("receipt.title", nil))
}

func TestLocalizer_FallsBackToEnglish(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "Receipt", tr.Localizer("fr").T("receipt.title", nil))
}

func TestLocalizer_TemplateData(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	msg := tr.Localizer("en").T("error.insufficient_stock", map[string]interface{}{"Name": "Pen"})
	assert.Equal(t, "Not enough inventory for Pen", msg)
}

func TestLocalizer_UnknownID(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	assert.Equal(t, "nope.missing", tr.Localizer("en").T("nope.missing", nil))

	var nilLoc *Localizer
	assert.Equal(t, "receipt.title", nilLoc.T("receipt.title", nil))
}
