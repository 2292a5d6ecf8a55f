package videoroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease/models"
	"mindease/services/appointment"
	"mindease/services/backend"

	"go.uber.org/zap"
)

// RoomError is a join the portal refused.
type RoomError struct {
	Code    string
	Message string
}

func (e *RoomError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var ErrAppointmentNotFound = errors.New("appointment not found")

type Service struct {
	api       backend.API
	projector *appointment.Projector
	tokens    *TokenIssuer
	now       func() time.Time
	logger    *zap.Logger
}

// NewService builds the room service. tokens may be nil, in which case joins
// carry no room token.
func NewService(api backend.API, projector *appointment.Projector, tokens *TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, projector: projector, tokens: tokens, now: time.Now, logger: logger}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Join admits the session's participant into a live appointment.
func (s *Service) Join(ctx context.Context, sess *models.SessionContext, id models.ID) (*models.RoomJoinConfig, error) {
	res := s.api.GetAppointments(ctx, sess)
	if err := backend.Err(res); err != nil {
		return nil, err
	}
	var appt *models.Appointment
	for i := range res.Data {
		if res.Data[i].ID == id {
			appt = &res.Data[i]
			break
		}
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != models.StatusScheduled {
		return nil, &RoomError{Code: "notScheduled", Message: "This session is no longer scheduled."}
	}
	if !s.projector.IsLive(*appt, s.now()) {
		return nil, &RoomError{Code: "notLive", Message: "You can join this session only during its scheduled time."}
	}

	cfg := RoomConfig(*appt, sess)

	if att := s.api.MarkAttended(ctx, sess, appt.ID); !att.Success {
		s.logger.Warn("failed to mark attendance",
			zap.String("appointment", appt.ID.String()), zap.String("role", string(sess.Role)), zap.String("message", att.Message))
	}

	if cfg.Kind == models.JoinKindRoom && s.tokens != nil {
		token, exp, err := s.tokens.Issue(cfg.UserID)
		if err != nil {
			return nil, err
		}
		cfg.AppID = s.tokens.AppID()
		cfg.Token = token
		cfg.TokenExpiresAt = &exp
	}
	return &cfg, nil
}

// RoomConfig maps an appointment onto the call UI settings. Voice sessions
// never start the camera and hide camera and screen-sharing controls.
func RoomConfig(a models.Appointment, sess *models.SessionContext) models.RoomJoinConfig {
	cfg := models.RoomJoinConfig{
		AppointmentID: a.ID,
		Route:         appointment.JoinRoute(a),
		Mode:          a.SessionMode,
		Role:          sess.Role,
		UserID:        sess.UserID,
		UserName:      sess.Username,
		MicrophoneOn:  true,
	}
	if cfg.UserName == "" {
		cfg.UserName = sess.UserID
	}
	if a.SessionMode == models.ModeMessage {
		cfg.Kind = models.JoinKindChat
		return cfg
	}
	cfg.Kind = models.JoinKindRoom
	cfg.RoomID = a.ID.String()
	video := a.SessionMode != models.ModeVoice
	cfg.CameraOn = video
	cfg.CameraToggle = video
	cfg.ScreenShare = video
	return cfg
}
