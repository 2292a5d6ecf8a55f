package backend

import (
	"context"
	"net/http"

	"mindease/models"
)

// GetAppointments lists the sessions of the acting role. Payloads are
// sanitized so feedback and cancellation fields only appear on statuses
// that allow them.
func (c *Client) GetAppointments(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Appointment] {
	path := pathUserAppts
	if sess != nil && sess.Role == models.RoleTherapist {
		path = pathTherapistAppts
	}
	res := call[[]models.Appointment](ctx, c, sess, request{method: http.MethodGet, path: path}, "data")
	for i := range res.Data {
		res.Data[i].Sanitize()
	}
	return res
}

// CreateAppointment books the session after a captured payment. The
// idempotency key lets the backend collapse replays of the same booking.
func (c *Client) CreateAppointment(ctx context.Context, sess *models.SessionContext, req models.NewAppointmentRequest, idempotencyKey string) models.Result[Empty] {
	r := request{method: http.MethodPost, path: pathCreateAppt, body: req}
	if idempotencyKey != "" {
		r.headers = map[string]string{idempotencyKeyHeader: idempotencyKey}
	}
	return withFallback(call[Empty](ctx, c, sess, r, dataRoot), "Appointment booked successfully")
}

func (c *Client) CancelSession(ctx context.Context, sess *models.SessionContext, appointmentID models.ID, reason string) models.Result[Empty] {
	role := models.RoleUser
	if sess != nil {
		role = sess.Role
	}
	return withFallback(call[Empty](ctx, c, sess, request{
		method: http.MethodPatch,
		path:   pathCancelSession(appointmentID),
		body:   models.CancelRequest{Reason: reason, CurrentRole: role},
	}, dataRoot), "Session cancelled")
}

func (c *Client) MakeCompleted(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[Empty] {
	return withFallback(call[Empty](ctx, c, sess, request{
		method: http.MethodPatch,
		path:   pathMakeCompleted,
		body:   map[string]models.ID{"id": appointmentID},
	}, dataRoot), "Session marked as completed")
}

func (c *Client) MarkAttended(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[Empty] {
	role := models.RoleUser
	if sess != nil {
		role = sess.Role
	}
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathMarkAttended,
		body:   map[string]any{"id": appointmentID, "role": role},
	}, dataRoot)
}

func (c *Client) SubmitFeedback(ctx context.Context, sess *models.SessionContext, req models.FeedbackRequest) models.Result[Empty] {
	return withFallback(call[Empty](ctx, c, sess, request{
		method: http.MethodPatch,
		path:   pathFeedback,
		body:   req,
	}, dataRoot), "Thank you for your feedback")
}
