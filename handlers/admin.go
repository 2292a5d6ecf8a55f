package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/reconciliation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Reconciliation *reconciliation.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(rs *reconciliation.Service) *AdminHandler {
	return &AdminHandler{Reconciliation: rs}
}

type resolveRequest struct {
	Note string `json:"note"`
}

// ListIncidents returns booking incidents, open ones unless ?status= says otherwise.
func (ah *AdminHandler) ListIncidents(c *gin.Context) {
	incidents, err := ah.Reconciliation.List(c.Request.Context(), models.IncidentStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incidents": incidents})
}

// ResolveIncident closes an incident that was settled by hand.
func (ah *AdminHandler) ResolveIncident(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id := c.Param("id")
	if err := ah.Reconciliation.Resolve(c.Request.Context(), id, req.Note); err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("incident resolved", zap.String("incident", id), zap.String("admin", sess.UserID))
	c.JSON(http.StatusOK, gin.H{"message": "Incident resolved."})
}
