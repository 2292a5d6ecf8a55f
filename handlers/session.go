package handlers

import (
	"errors"
	"net/http"

	"mindease/models"
	"mindease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exchanges backend tokens for a portal session.
type SessionHandler struct {
	Sessions  utils.SessionStore
	JWTSecret string
}

func NewSessionHandler(sessions utils.SessionStore, jwtSecret string) *SessionHandler {
	return &SessionHandler{Sessions: sessions, JWTSecret: jwtSecret}
}

type sessionResponse struct {
	SessionID string      `json:"sessionId"`
	UserID    string      `json:"userId"`
	Username  string      `json:"username,omitempty"`
	Role      models.Role `json:"role"`
}

type roleSwitch struct {
	Role models.Role `json:"role" validate:"required,oneof=user therapist admin"`
}

// claimsAllow reports whether a token may act in role. Only tokens issued to
// admins may act as admin.
func claimsAllow(claims *utils.AccessClaims, role models.Role) bool {
	if role == models.RoleAdmin {
		return claims.Role == models.RoleAdmin
	}
	return true
}

func (h *SessionHandler) readClaims(c *gin.Context, token string) (*utils.AccessClaims, bool) {
	claims, err := utils.ReadAccessClaims(token, h.JWTSecret)
	if err != nil {
		msg := "Invalid access token."
		if errors.Is(err, utils.ErrTokenExpired) {
			msg = "Your login has expired. Please log in again."
		}
		getLogger(c).Warn("rejected access token", zap.Error(err))
		utils.JSONError(c, http.StatusUnauthorized, msg, "")
		return nil, false
	}
	return claims, true
}

// Create handles POST /api/session.
func (h *SessionHandler) Create(c *gin.Context) {
	var login models.SessionLogin
	if err := c.ShouldBindJSON(&login); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(login); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid login.", err.Error())
		return
	}
	claims, ok := h.readClaims(c, login.Access)
	if !ok {
		return
	}
	if !claimsAllow(claims, login.Role) {
		utils.JSONCodedError(c, http.StatusForbidden, "forbiddenRole", "This account cannot sign in as "+string(login.Role)+".")
		return
	}

	sess, err := h.Sessions.Create(c.Request.Context(), models.SessionContext{
		UserID:       claims.UserID,
		Username:     claims.Username,
		Role:         login.Role,
		AccessToken:  login.Access,
		RefreshToken: login.Refresh,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("session created", zap.String("user", sess.UserID), zap.String("role", string(sess.Role)))
	c.JSON(http.StatusCreated, sessionResponse{SessionID: sess.ID, UserID: sess.UserID, Username: sess.Username, Role: sess.Role})
}

// SwitchRole handles PUT /api/session/role.
func (h *SessionHandler) SwitchRole(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req roleSwitch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Unknown role.", err.Error())
		return
	}
	claims, ok := h.readClaims(c, sess.AccessToken)
	if !ok {
		return
	}
	if !claimsAllow(claims, req.Role) {
		utils.JSONCodedError(c, http.StatusForbidden, "forbiddenRole", "This account cannot act as "+string(req.Role)+".")
		return
	}
	sess.Role = req.Role
	if err := h.Sessions.Save(c.Request.Context(), sess); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{SessionID: sess.ID, UserID: sess.UserID, Username: sess.Username, Role: sess.Role})
}

// Delete handles DELETE /api/session.
func (h *SessionHandler) Delete(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}
