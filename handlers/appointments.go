package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/listing"
	"mindease/services/videoroom"
	"mindease/services/workflow"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// AppointmentHandler serves the appointment list and its actions.
type AppointmentHandler struct {
	Workflow *workflow.Service
	Rooms    *videoroom.Service
}

func NewAppointmentHandler(wf *workflow.Service, rooms *videoroom.Service) *AppointmentHandler {
	return &AppointmentHandler{Workflow: wf, Rooms: rooms}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type feedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// List handles GET /api/appointments. Therapists get tabbed, paged views;
// clients get their full projected list.
func (h *AppointmentHandler) List(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if sess.Role == models.RoleTherapist {
		page, err := h.Workflow.Browse(c.Request.Context(), sess, listing.AppointmentQuery{
			Tab:  listing.Tab(c.Query("tab")),
			Date: c.Query("date"),
			Page: cast.ToInt(c.Query("page")),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}
	list, err := h.Workflow.List(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

// Cancel handles PATCH /api/appointments/:id/cancel.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Workflow.Cancel(c.Request.Context(), sess, models.ID(c.Param("id")), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Feedback handles PATCH /api/appointments/:id/feedback.
func (h *AppointmentHandler) Feedback(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.Workflow.SubmitFeedback(c.Request.Context(), sess, models.ID(c.Param("id")), req.Rating, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Complete handles PATCH /api/appointments/:id/complete.
func (h *AppointmentHandler) Complete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	out, err := h.Workflow.MarkCompleted(c.Request.Context(), sess, models.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Join handles POST /api/appointments/:id/join.
func (h *AppointmentHandler) Join(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	cfg, err := h.Rooms.Join(c.Request.Context(), sess, models.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}
