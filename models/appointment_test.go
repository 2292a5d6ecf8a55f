package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDropsFeedbackUnlessCompleted(t *testing.T) {
	payload := `{"id":9,"status":"Scheduled","feedback":"great","rating":5,"cancel_reason":"x","canceled_person":"Client"}`
	var a Appointment
	require.NoError(t, json.Unmarshal([]byte(payload), &a))

	a.Sanitize()
	assert.Nil(t, a.Feedback)
	assert.Nil(t, a.Rating)
	assert.Nil(t, a.CancelReason)
	assert.Nil(t, a.CanceledPerson)
	assert.Equal(t, ID("9"), a.ID)
}

func TestSanitizeKeepsCancellationOnAbsence(t *testing.T) {
	reason := "did not join"
	party := CancelledByTherapist
	a := Appointment{Status: StatusAbsentClient, CancelReason: &reason, CanceledPerson: &party}
	a.Sanitize()
	require.NotNil(t, a.CancelReason)
	assert.Equal(t, reason, *a.CancelReason)
}

func TestStatusHelpers(t *testing.T) {
	assert.True(t, StatusNoShowBoth.IsAbsence())
	assert.False(t, StatusCancelled.IsAbsence())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusScheduled.Terminal())
	assert.True(t, ModeVoice.Valid())
	assert.False(t, SessionMode("fax").Valid())
}
