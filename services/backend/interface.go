package backend

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"mindease/models"
	"mindease/utils"

	"go.uber.org/zap"
)

// Empty is the payload type of calls whose only outcome is success and a message.
type Empty struct{}

// API is the typed gateway to the therapy platform REST backend. Every
// operation reports its outcome through models.Result and never returns a
// transport error to the caller.
type API interface {
	GetProfile(ctx context.Context, sess *models.SessionContext) models.Result[models.Profile]
	UpdateProfileField(ctx context.Context, sess *models.SessionContext, field, value string) models.Result[Empty]
	UpdateProfileImage(ctx context.Context, sess *models.SessionContext, filename string, image io.Reader) models.Result[Empty]
	VerifyPassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[Empty]
	ChangePassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[Empty]
	VerifyEmail(ctx context.Context, sess *models.SessionContext, email string) models.Result[Empty]

	GetAppointments(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Appointment]
	CreateAppointment(ctx context.Context, sess *models.SessionContext, req models.NewAppointmentRequest, idempotencyKey string) models.Result[Empty]
	CancelSession(ctx context.Context, sess *models.SessionContext, appointmentID models.ID, reason string) models.Result[Empty]
	MakeCompleted(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[Empty]
	MarkAttended(ctx context.Context, sess *models.SessionContext, appointmentID models.ID) models.Result[Empty]
	SubmitFeedback(ctx context.Context, sess *models.SessionContext, req models.FeedbackRequest) models.Result[Empty]

	CreatePaymentIntent(ctx context.Context, sess *models.SessionContext, amount int64) models.Result[models.PaymentIntent]

	GetTherapists(ctx context.Context, sess *models.SessionContext) models.Result[[]models.TherapistProfile]
	GetTherapistInformation(ctx context.Context, sess *models.SessionContext, therapistID models.ID) models.Result[models.TherapistProfile]
	GetPrices(ctx context.Context, sess *models.SessionContext) models.Result[models.PriceTable]

	GetWallet(ctx context.Context, sess *models.SessionContext) models.Result[models.Wallet]
	GetTransactions(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Transaction]
	RequestWithdrawal(ctx context.Context, sess *models.SessionContext, req models.WithdrawalRequest) models.Result[Empty]

	GetNotifications(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Notification]
	MarkNotificationRead(ctx context.Context, sess *models.SessionContext, id models.ID) models.Result[Empty]
	MarkAllNotificationsRead(ctx context.Context, sess *models.SessionContext) models.Result[Empty]

	MediaURL(path string) string
}

// Client implements API over HTTP.
type Client struct {
	baseURL   string
	mediaBase string
	http      *http.Client
	sessions  utils.SessionStore
	logger    *zap.Logger
}

// NewClient builds a gateway client. sessions receives refreshed tokens and
// loses sessions the backend reports as blocked; it may be nil.
func NewClient(baseURL, mediaBase string, timeout time.Duration, sessions utils.SessionStore, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		mediaBase: strings.TrimRight(mediaBase, "/"),
		http:      &http.Client{Timeout: timeout},
		sessions:  sessions,
		logger:    logger,
	}
}

// MediaURL resolves a backend media path against the media host. Absolute
// URLs are returned unchanged.
func (c *Client) MediaURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.mediaBase + "/" + strings.TrimLeft(path, "/")
}

// Ping reports whether the backend answers at all.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
