package handlers

import (
	"net/http"

	"mindease/models"
	"mindease/services/wallet"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

type WalletHandler struct {
	Wallet *wallet.Service
}

func NewWalletHandler(svc *wallet.Service) *WalletHandler {
	return &WalletHandler{Wallet: svc}
}

// View handles GET /api/wallet.
func (h *WalletHandler) View(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	view, err := h.Wallet.View(c.Request.Context(), sess, cast.ToInt(c.Query("page")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Withdraw handles POST /api/wallet/withdrawals.
func (h *WalletHandler) Withdraw(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}
	var req models.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.Wallet.Withdraw(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
