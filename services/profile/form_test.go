package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavingFieldIsBusy(t *testing.T) {
	f := newForm()
	require.NoError(t, f.Edit("fullname", "Asha"))
	_, err := f.BeginSave("fullname")
	require.NoError(t, err)

	var ferr *FieldError
	require.ErrorAs(t, f.Edit("fullname", "Asha"), &ferr)
	assert.Equal(t, "busy", ferr.Code)
	require.ErrorAs(t, f.Cancel("fullname"), &ferr)
	assert.Equal(t, "busy", ferr.Code)
}

func TestAbandonedSaveStopsBlocking(t *testing.T) {
	f := newForm()
	require.NoError(t, f.Edit("fullname", "Asha"))
	require.NoError(t, f.SetDraft("fullname", "Asha Rao"))
	_, err := f.BeginSave("fullname")
	require.NoError(t, err)
	f.Fields["fullname"].SavingSince = time.Now().Add(-2 * saveStaleAfter)

	require.NoError(t, f.Edit("fullname", "Asha"))
	ff := f.Fields["fullname"]
	assert.Equal(t, Editing, ff.State)
	assert.Equal(t, "Asha Rao", ff.Draft)
	assert.NotEmpty(t, ff.Error)

	_, err = f.BeginSave("fullname")
	require.NoError(t, err)
	f.Fields["fullname"].SavingSince = time.Now().Add(-2 * saveStaleAfter)
	assert.NoError(t, f.Cancel("fullname"))
	assert.NotContains(t, f.Fields, "fullname")
}
