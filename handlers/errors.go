package handlers

import (
	"errors"
	"net/http"

	reconciliationRepo "mindease/database/repository/reconciliation"
	"mindease/middleware"
	"mindease/models"
	"mindease/services/backend"
	"mindease/services/booking"
	"mindease/services/profile"
	"mindease/services/reconciliation"
	"mindease/services/videoroom"
	"mindease/services/wallet"
	"mindease/services/workflow"
	"mindease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bookingFailureResponse struct {
	Message         string `json:"message"`
	Code            string `json:"code"`
	IncidentID      string `json:"incidentId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// conflictCodes are flow rejections caused by the flow's state rather than the input.
var conflictCodes = map[string]bool{
	"selectionLocked":    true,
	"checkoutInProgress": true,
	"alreadySubmitted":   true,
}

// respondError writes the HTTP response for a service error.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *workflow.ValidationError
		withdrawalErr *wallet.WithdrawalError
		fieldErr      *profile.FieldError
		flowErr       *booking.FlowError
		paymentErr    *booking.PaymentError
		afterPayErr   *booking.BookingAfterPaymentError
		roomErr       *videoroom.RoomError
		failure       *backend.Failure
	)

	switch {
	case errors.As(err, &validationErr):
		utils.JSONCodedError(c, http.StatusUnprocessableEntity, validationErr.Field, validationErr.Message)
	case errors.As(err, &withdrawalErr):
		utils.JSONCodedError(c, http.StatusUnprocessableEntity, withdrawalErr.Field, withdrawalErr.Message)
	case errors.As(err, &fieldErr):
		utils.JSONCodedError(c, http.StatusUnprocessableEntity, fieldErr.Code, fieldErr.Message)
	case errors.As(err, &flowErr):
		status := http.StatusUnprocessableEntity
		if flowErr.Code == "clientsOnly" {
			status = http.StatusForbidden
		} else if conflictCodes[flowErr.Code] {
			status = http.StatusConflict
		}
		utils.JSONCodedError(c, status, flowErr.Code, flowErr.Message)
	case errors.As(err, &paymentErr):
		utils.JSONCodedError(c, http.StatusPaymentRequired, "paymentFailed", paymentErr.Message)
	case errors.As(err, &afterPayErr):
		getLogger(c).Error("payment captured but booking failed",
			zap.String("incident", afterPayErr.IncidentID),
			zap.String("paymentIntent", afterPayErr.PaymentIntentID),
			zap.String("backendMessage", afterPayErr.BackendMessage))
		c.JSON(http.StatusBadGateway, bookingFailureResponse{
			Message:         booking.BookingAfterPaymentMessage,
			Code:            "bookingAfterPayment",
			IncidentID:      afterPayErr.IncidentID,
			PaymentIntentID: afterPayErr.PaymentIntentID,
		})
	case errors.As(err, &roomErr):
		utils.JSONCodedError(c, http.StatusConflict, roomErr.Code, roomErr.Message)
	case errors.As(err, &failure):
		switch {
		case failure.Unauthorized():
			middleware.AbortUnauthorized(c, failure.Message)
		case failure.Status >= 400 && failure.Status < 500:
			utils.JSONError(c, failure.Status, failure.Message, "")
		default:
			utils.JSONError(c, http.StatusBadGateway, failure.Message, "")
		}
	case errors.Is(err, booking.ErrFlowNotFound),
		errors.Is(err, workflow.ErrAppointmentNotFound),
		errors.Is(err, videoroom.ErrAppointmentNotFound),
		errors.Is(err, reconciliationRepo.ErrIncidentNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found.", err.Error())
	case errors.Is(err, booking.ErrFlowForbidden):
		utils.JSONError(c, http.StatusForbidden, "This booking belongs to another session.", "")
	case errors.Is(err, reconciliation.ErrNoteRequired), errors.Is(err, reconciliation.ErrUnknownStatus):
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "")
	default:
		getLogger(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, utils.GenericFailureMessage, "")
	}
}

// badRequest rejects an unreadable request body.
func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "Invalid request body.", err.Error())
}

// currentSession returns the caller's session, writing a 401 when absent.
func currentSession(c *gin.Context) (*models.SessionContext, bool) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		middleware.AbortUnauthorized(c, "Please log in to continue.")
		return nil, false
	}
	return sess, true
}
