// Package backendmock provides a testify mock of backend.API.
package backendmock

import (
	"context"
	"io"

	"mindease/models"
	"mindease/services/backend"

	"github.com/stretchr/testify/mock"
)

type API struct {
	mock.Mock
}

var _ backend.API = (*API)(nil)

func result[T any](args mock.Arguments) models.Result[T] {
	return args.Get(0).(models.Result[T])
}

func (m *API) GetProfile(ctx context.Context, sess *models.SessionContext) models.Result[models.Profile] {
	return result[models.Profile](m.Called(ctx, sess))
}

func (m *API) UpdateProfileField(ctx context.Context, sess *models.SessionContext, field, value string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, field, value))
}

func (m *API) UpdateProfileImage(ctx context.Context, sess *models.SessionContext, filename string, image io.Reader) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, filename, image))
}

func (m *API) VerifyPassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, password))
}

func (m *API) ChangePassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, password))
}

func (m *API) VerifyEmail(ctx context.Context, sess *models.SessionContext, email string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, email))
}

func (m *API) GetAppointments(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Appointment] {
	return result[[]models.Appointment](m.Called(ctx, sess))
}

func (m *API) CreateAppointment(ctx context.Context, sess *models.SessionContext, req models.NewAppointmentRequest, idempotencyKey string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, req, idempotencyKey))
}

func (m *API) CancelSession(ctx context.Context, sess *models.SessionContext, appointmentID models.ID, reason string) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, appointmentID, reason))
}

func (m *API) MakeCompleted(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, appointmentID))
}

func (m *API) MarkAttended(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, appointmentID))
}

func (m *API) SubmitFeedback(ctx context.Context, sess *models.SessionContext, req models.FeedbackRequest) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, req))
}

func (m *API) CreatePaymentIntent(ctx context.Context, sess *models.SessionContext, amount int64) models.Result[models.PaymentIntent] {
	return result[models.PaymentIntent](m.Called(ctx, sess, amount))
}

func (m *API) GetTherapists(ctx context.Context, sess *models.SessionContext) models.Result[[]models.TherapistProfile] {
	return result[[]models.TherapistProfile](m.Called(ctx, sess))
}

func (m *API) GetTherapistInformation(ctx context.Context, sess *models.SessionContext, therapistID models.ID) models.Result[models.TherapistProfile] {
	return result[models.TherapistProfile](m.Called(ctx, sess, therapistID))
}

func (m *API) GetPrices(ctx context.Context, sess *models.SessionContext) models.Result[models.PriceTable] {
	return result[models.PriceTable](m.Called(ctx, sess))
}

func (m *API) GetWallet(ctx context.Context, sess *models.SessionContext) models.Result[models.Wallet] {
	return result[models.Wallet](m.Called(ctx, sess))
}

func (m *API) GetTransactions(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Transaction] {
	return result[[]models.Transaction](m.Called(ctx, sess))
}

func (m *API) RequestWithdrawal(ctx context.Context, sess *models.SessionContext, req models.WithdrawalRequest) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, req))
}

func (m *API) GetNotifications(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Notification] {
	return result[[]models.Notification](m.Called(ctx, sess))
}

func (m *API) MarkNotificationRead(ctx context.Context, sess *models.SessionContext, id models.ID) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess, id))
}

func (m *API) MarkAllNotificationsRead(ctx context.Context, sess *models.SessionContext) models.Result[backend.Empty] {
	return result[backend.Empty](m.Called(ctx, sess))
}

func (m *API) MediaURL(path string) string {
	return m.Called(path).String(0)
}

// OK is a successful empty backend result.
func OK(message string) models.Result[backend.Empty] {
	return models.Ok(backend.Empty{}, message, 200)
}

// Failed is a rejected empty backend result.
func Failed(message string, status int) models.Result[backend.Empty] {
	return models.Fail[backend.Empty](message, status)
}
