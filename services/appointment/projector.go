package appointment

import (
	"fmt"
	"time"

	"mindease/models"

	"go.uber.org/zap"
)

const (
	// LiveWindow is how long a session stays joinable after it starts.
	LiveWindow = 60 * time.Minute
	// CancelCutoff is the latest a session may be cancelled before its start.
	CancelCutoff = time.Hour
)

type Action string

const (
	ActionCancel       Action = "cancel"
	ActionJoin         Action = "join"
	ActionMarkComplete Action = "mark_complete"
	ActionFeedback     Action = "feedback"
)

const (
	invalidDate = "Invalid date"
	invalidTime = "Invalid time"
)

// Projection is an appointment as a given role should see it right now.
type Projection struct {
	Appointment      models.Appointment       `json:"appointment"`
	DisplayStatus    models.AppointmentStatus `json:"displayStatus"`
	DisplayDate      string                   `json:"displayDate"`
	DisplayTime      string                   `json:"displayTime"`
	StartsAt         *time.Time               `json:"startsAt,omitempty"`
	Live             bool                     `json:"live"`
	Actions          []Action                 `json:"actions"`
	JoinRoute        string                   `json:"joinRoute,omitempty"`
	CancelReason     string                   `json:"cancelReason,omitempty"`
	CancelledBy      models.CancelParty       `json:"cancelledBy,omitempty"`
	AbsenceNote      string                   `json:"absenceNote,omitempty"`
	CounterpartName  string                   `json:"counterpartName,omitempty"`
	CounterpartImage string                   `json:"counterpartImage,omitempty"`
}

// Has reports whether the projection offers the action.
func (p Projection) Has(a Action) bool {
	for _, x := range p.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Projector derives display state and permitted actions from raw appointments.
type Projector struct {
	loc    *time.Location
	logger *zap.Logger
}

func NewProjector(loc *time.Location, logger *zap.Logger) *Projector {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{loc: loc, logger: logger}
}

func (p *Projector) Location() *time.Location {
	return p.loc
}

// StartOf returns the session start instant of a.
func (p *Projector) StartOf(a models.Appointment) (time.Time, error) {
	return ParseSessionStart(a.DateValue, a.TimeValue, p.loc)
}

// IsLive reports whether now falls inside [start, start+LiveWindow]. It is
// false whenever the date or time cannot be parsed.
func (p *Projector) IsLive(a models.Appointment, now time.Time) bool {
	start, err := p.StartOf(a)
	if err != nil {
		p.logger.Warn("cannot evaluate live window",
			zap.String("appointment", a.ID.String()),
			zap.String("date", a.DateValue),
			zap.String("time", a.TimeValue),
			zap.Error(err))
		return false
	}
	end := start.Add(LiveWindow)
	return !now.Before(start) && !now.After(end)
}

// CanCancel is true for a Scheduled session that starts more than
// CancelCutoff from now.
func (p *Projector) CanCancel(a models.Appointment, now time.Time) bool {
	if a.Status != models.StatusScheduled {
		return false
	}
	start, err := p.StartOf(a)
	if err != nil {
		return false
	}
	return now.Before(start.Add(-CancelCutoff))
}

// Project computes the role-specific view of a.
func (p *Projector) Project(a models.Appointment, role models.Role, now time.Time) Projection {
	a.Sanitize()
	out := Projection{
		Appointment:   a,
		DisplayStatus: a.Status,
		DisplayDate:   invalidDate,
		DisplayTime:   invalidTime,
		Actions:       []Action{},
	}

	if day, err := ParseDate(a.DateValue, p.loc); err == nil {
		out.DisplayDate = day.Format("Jan 2, 2006")
	}
	if h, m, err := ParseClock(a.TimeValue); err == nil {
		out.DisplayTime = time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
	}
	if start, err := p.StartOf(a); err == nil {
		out.StartsAt = &start
	}

	switch {
	case a.Status == models.StatusScheduled:
		out.Live = p.IsLive(a, now)
		if out.Live {
			out.DisplayStatus = models.StatusOngoing
			out.Actions = append(out.Actions, ActionJoin)
			out.JoinRoute = JoinRoute(a)
			if role == models.RoleTherapist {
				out.Actions = append(out.Actions, ActionMarkComplete)
			}
		} else if p.CanCancel(a, now) {
			out.Actions = append(out.Actions, ActionCancel)
		}
	case a.Status == models.StatusCompleted:
		if role == models.RoleUser && !a.HasFeedback() {
			out.Actions = append(out.Actions, ActionFeedback)
		}
	case a.Status == models.StatusCancelled || a.Status.IsAbsence():
		if a.CancelReason != nil {
			out.CancelReason = *a.CancelReason
		}
		if a.CanceledPerson != nil {
			out.CancelledBy = *a.CanceledPerson
		}
		out.AbsenceNote = absenceNote(a.Status)
	}

	if role == models.RoleTherapist {
		out.CounterpartName = a.ClientName
		if a.ClientProfileImage != nil {
			out.CounterpartImage = *a.ClientProfileImage
		}
	} else if a.TherapistDetails != nil {
		out.CounterpartName = a.TherapistDetails.FullName
		if a.TherapistDetails.ProfileImage != nil {
			out.CounterpartImage = *a.TherapistDetails.ProfileImage
		}
	}
	return out
}

// ProjectAll projects every appointment, keeping input order.
func (p *Projector) ProjectAll(list []models.Appointment, role models.Role, now time.Time) []Projection {
	out := make([]Projection, 0, len(list))
	for _, a := range list {
		out = append(out, p.Project(a, role, now))
	}
	return out
}

// JoinRoute is the in-app route of a live session: message sessions open the
// chat between the two participants, video and voice sessions open the call room.
func JoinRoute(a models.Appointment) string {
	if a.SessionMode == models.ModeMessage {
		return fmt.Sprintf("/chat/%s/%s", a.Client, a.Therapist)
	}
	return fmt.Sprintf("/videoCall/%s/%s/%s", a.Client, a.ID, a.SessionMode)
}

func absenceNote(s models.AppointmentStatus) string {
	switch s {
	case models.StatusAbsentClient:
		return "The client did not join this session."
	case models.StatusAbsentTherapist:
		return "The therapist did not join this session."
	case models.StatusNoShowBoth:
		return "Neither participant joined this session."
	}
	return ""
}
