package videoroom

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"mindease/models"
	"mindease/services/appointment"
	"mindease/services/backend/backendmock"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

var sess = &models.SessionContext{ID: "s1", UserID: "7", Username: "asha", Role: models.RoleUser}

func appt(mode models.SessionMode) models.Appointment {
	return models.Appointment{
		ID: "11", Client: "7", Therapist: "9",
		DateValue: "05,Jan,2025", TimeValue: "02:00 PM",
		Status: models.StatusScheduled, SessionMode: mode,
	}
}

func newService(t *testing.T, list []models.Appointment, now time.Time, tokens *TokenIssuer) (*Service, *backendmock.API) {
	t.Helper()
	api := &backendmock.API{}
	api.On("GetAppointments", mock.Anything, sess).Return(models.Ok(list, "", 200))
	svc := NewService(api, appointment.NewProjector(time.UTC, nil), tokens, nil)
	svc.SetClock(func() time.Time { return now })
	return svc, api
}

var live = time.Date(2025, time.January, 5, 14, 30, 0, 0, time.UTC)

func TestVoiceJoinDisablesCamera(t *testing.T) {
	svc, api := newService(t, []models.Appointment{appt(models.ModeVoice)}, live, nil)
	api.On("MarkAttended", mock.Anything, sess, models.ID("11")).Return(backendmock.OK(""))

	cfg, err := svc.Join(context.Background(), sess, "11")
	require.NoError(t, err)
	assert.Equal(t, models.JoinKindRoom, cfg.Kind)
	assert.False(t, cfg.CameraOn)
	assert.False(t, cfg.CameraToggle)
	assert.False(t, cfg.ScreenShare)
	assert.True(t, cfg.MicrophoneOn)
	assert.Equal(t, "/videoCall/7/11/voice", cfg.Route)
	api.AssertExpectations(t)
}

func TestMessageJoinIsChat(t *testing.T) {
	svc, api := newService(t, []models.Appointment{appt(models.ModeMessage)}, live, nil)
	api.On("MarkAttended", mock.Anything, sess, models.ID("11")).Return(backendmock.Failed("oops", 500))

	cfg, err := svc.Join(context.Background(), sess, "11")
	require.NoError(t, err)
	assert.Equal(t, models.JoinKindChat, cfg.Kind)
	assert.Equal(t, "/chat/7/9", cfg.Route)
	assert.Empty(t, cfg.Token)
}

func TestJoinOutsideWindowRefused(t *testing.T) {
	svc, api := newService(t, []models.Appointment{appt(models.ModeVideo)}, live.Add(31*time.Minute), nil)
	_, err := svc.Join(context.Background(), sess, "11")
	var rerr *RoomError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "notLive", rerr.Code)
	api.AssertNotCalled(t, "MarkAttended", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinCancelledRefused(t *testing.T) {
	a := appt(models.ModeVideo)
	a.Status = models.StatusCancelled
	svc, _ := newService(t, []models.Appointment{a}, live, nil)
	_, err := svc.Join(context.Background(), sess, "11")
	var rerr *RoomError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "notScheduled", rerr.Code)
}

func TestVideoJoinCarriesToken(t *testing.T) {
	issuer, err := NewTokenIssuer(12345, secret, time.Hour)
	require.NoError(t, err)
	svc, api := newService(t, []models.Appointment{appt(models.ModeVideo)}, live, issuer)
	api.On("MarkAttended", mock.Anything, sess, models.ID("11")).Return(backendmock.OK(""))

	cfg, err := svc.Join(context.Background(), sess, "11")
	require.NoError(t, err)
	assert.True(t, cfg.CameraOn)
	assert.Equal(t, uint32(12345), cfg.AppID)
	assert.True(t, strings.HasPrefix(cfg.Token, "04"))
	require.NotNil(t, cfg.TokenExpiresAt)
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(42, secret, 10*time.Minute)
	require.NoError(t, err)
	fixed := time.Unix(1_700_000_000, 0)
	issuer.now = func() time.Time { return fixed }

	token, exp, err := issuer.Issue("7")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(10*time.Minute).Unix(), exp.Unix())

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, "04"))
	require.NoError(t, err)
	assert.Equal(t, exp.Unix(), int64(binary.BigEndian.Uint64(raw[:8])))
	ivLen := int(binary.BigEndian.Uint16(raw[8:10]))
	require.Equal(t, 16, ivLen)
	iv := raw[10 : 10+ivLen]
	ctLen := int(binary.BigEndian.Uint16(raw[10+ivLen : 12+ivLen]))
	ct := raw[12+ivLen:]
	require.Len(t, ct, ctLen)

	plain, err := decrypt([]byte(secret), iv, ct)
	require.NoError(t, err)
	var info tokenInfo
	require.NoError(t, json.Unmarshal(plain, &info))
	assert.Equal(t, uint32(42), info.AppID)
	assert.Equal(t, "7", info.UserID)
	assert.Equal(t, exp.Unix(), info.Expire)
}

func TestTokenIssuerConfig(t *testing.T) {
	_, err := NewTokenIssuer(0, secret, time.Hour)
	assert.ErrorIs(t, err, ErrTokenNotConfigured)
	_, err = NewTokenIssuer(1, "short", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidSecret)
}
