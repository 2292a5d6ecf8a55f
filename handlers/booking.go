package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/booking"

	"github.com/gin-gonic/gin"
)

// BookingHandler drives booking flows for clients.
type BookingHandler struct {
	Bookings *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

// flowView is a booking flow plus what the client can pick next.
type flowView struct {
	*models.BookingFlow
	SelectableDates []models.AvailabilitySlot `json:"selectableDates"`
	ReviewUnlocked  bool                      `json:"reviewUnlocked"`
}

func newFlowView(f *models.BookingFlow) flowView {
	return flowView{
		BookingFlow:     f,
		SelectableDates: booking.SelectableDates(f),
		ReviewUnlocked:  booking.ReviewUnlocked(f),
	}
}

type startRequest struct {
	TherapistID models.ID `json:"therapistId"`
}

type dateRequest struct {
	DateID models.ID `json:"dateId"`
}

type timeRequest struct {
	TimeID models.ID `json:"timeId"`
}

type modeRequest struct {
	Mode models.SessionMode `json:"mode"`
}

type typeRequest struct {
	Type models.SessionType `json:"type"`
}

type checkoutRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
}

func (h *BookingHandler) respondFlow(c *gin.Context, status int, f *models.BookingFlow, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, newFlowView(f))
}

// Start handles POST /api/booking/flows.
func (h *BookingHandler) Start(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Bookings.Start(c.Request.Context(), sess, req.TherapistID)
	h.respondFlow(c, http.StatusCreated, f, err)
}

// Get handles GET /api/booking/flows/:flowID.
func (h *BookingHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	f, err := h.Bookings.Get(c.Request.Context(), sess, c.Param("flowID"))
	h.respondFlow(c, http.StatusOK, f, err)
}

// SelectDate handles PUT /api/booking/flows/:flowID/date.
func (h *BookingHandler) SelectDate(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Bookings.SelectDate(c.Request.Context(), sess, c.Param("flowID"), req.DateID)
	h.respondFlow(c, http.StatusOK, f, err)
}

// SelectTime handles PUT /api/booking/flows/:flowID/time.
func (h *BookingHandler) SelectTime(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req timeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Bookings.SelectTime(c.Request.Context(), sess, c.Param("flowID"), req.TimeID)
	h.respondFlow(c, http.StatusOK, f, err)
}

// SelectMode handles PUT /api/booking/flows/:flowID/mode.
func (h *BookingHandler) SelectMode(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Bookings.SelectMode(c.Request.Context(), sess, c.Param("flowID"), req.Mode)
	h.respondFlow(c, http.StatusOK, f, err)
}

// SelectType handles PUT /api/booking/flows/:flowID/type.
func (h *BookingHandler) SelectType(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req typeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f, err := h.Bookings.SelectType(c.Request.Context(), sess, c.Param("flowID"), req.Type)
	h.respondFlow(c, http.StatusOK, f, err)
}

// Summary handles GET /api/booking/flows/:flowID/summary.
func (h *BookingHandler) Summary(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	summary, err := h.Bookings.Summary(c.Request.Context(), sess, c.Param("flowID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Checkout handles POST /api/booking/flows/:flowID/checkout.
func (h *BookingHandler) Checkout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Bookings.Checkout(c.Request.Context(), sess, c.Param("flowID"), req.PaymentMethodID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}
