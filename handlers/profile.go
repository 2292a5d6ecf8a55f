package handlers

import (
	"net/http"

	"mindease/middleware"
	"mindease/services/profile"
	"mindease/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileHandler serves the per-field profile editor and account actions.
type ProfileHandler struct {
	Profiles *profile.Service
	Sessions utils.SessionStore
}

func NewProfileHandler(svc *profile.Service, sessions utils.SessionStore) *ProfileHandler {
	return &ProfileHandler{Profiles: svc, Sessions: sessions}
}

type draftRequest struct {
	Value string `json:"value"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *ProfileHandler) respondView(c *gin.Context, view *profile.View, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.Profiles.Get(c.Request.Context(), sess)
	h.respondView(c, view, err)
}

// Edit handles POST /api/profile/fields/:field/edit.
func (h *ProfileHandler) Edit(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.Profiles.Edit(c.Request.Context(), sess, c.Param("field"))
	h.respondView(c, view, err)
}

// SetDraft handles PUT /api/profile/fields/:field.
func (h *ProfileHandler) SetDraft(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.Profiles.SetDraft(c.Request.Context(), sess, c.Param("field"), req.Value)
	h.respondView(c, view, err)
}

// Save handles POST /api/profile/fields/:field/save.
func (h *ProfileHandler) Save(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.Profiles.Save(c.Request.Context(), sess, c.Param("field"))
	h.respondView(c, view, err)
}

// Cancel handles POST /api/profile/fields/:field/cancel.
func (h *ProfileHandler) Cancel(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.Profiles.Cancel(c.Request.Context(), sess, c.Param("field"))
	h.respondView(c, view, err)
}

// UploadImage handles PATCH /api/profile/image with a multipart "image" file.
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "invalid", "Please choose an image file.")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	view, err := h.Profiles.UploadImage(c.Request.Context(), sess, header.Filename, header.Size, file)
	h.respondView(c, view, err)
}

// VerifyPassword handles POST /api/profile/password/verify.
func (h *ProfileHandler) VerifyPassword(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Profiles.VerifyPassword(c.Request.Context(), sess, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password verified."})
}

// ChangePassword handles POST /api/profile/password. The session ends on
// success and the client must log in again.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Profiles.ChangePassword(c.Request.Context(), sess, req.Password); err != nil {
		respondError(c, err)
		return
	}
	if err := h.Sessions.Delete(c.Request.Context(), sess.ID); err != nil {
		getLogger(c).Warn("could not end session after password change", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed. Please log in again.", "redirect": middleware.LoginRedirect})
}

// VerifyEmail handles POST /api/profile/email/verify.
func (h *ProfileHandler) VerifyEmail(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.Profiles.VerifyEmail(c.Request.Context(), sess, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if msg == "" {
		msg = "Verification email sent."
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
