package backend

import (
	"context"
	"net/http"

	"mindease/models"
)

func (c *Client) GetTherapists(ctx context.Context, sess *models.SessionContext) models.Result[[]models.TherapistProfile] {
	return call[[]models.TherapistProfile](ctx, c, sess, request{method: http.MethodGet, path: pathTherapists}, "data")
}

func (c *Client) GetTherapistInformation(ctx context.Context, sess *models.SessionContext, therapistID models.ID) models.Result[models.TherapistProfile] {
	return call[models.TherapistProfile](ctx, c, sess, request{method: http.MethodGet, path: pathTherapistInfo(therapistID)}, "data")
}

// GetPrices reads the backend price list. Values may arrive as numbers or
// numeric strings.
func (c *Client) GetPrices(ctx context.Context, sess *models.SessionContext) models.Result[models.PriceTable] {
	raw := call[map[models.SessionMode]models.FlexInt](ctx, c, sess, request{method: http.MethodGet, path: pathPrices}, "prices")
	out := models.Result[models.PriceTable]{Success: raw.Success, Message: raw.Message, StatusCode: raw.StatusCode}
	if raw.Success && len(raw.Data) > 0 {
		out.Data = make(models.PriceTable, len(raw.Data))
		for mode, v := range raw.Data {
			out.Data[mode] = int64(v)
		}
	}
	return out
}

func (c *Client) CreatePaymentIntent(ctx context.Context, sess *models.SessionContext, amount int64) models.Result[models.PaymentIntent] {
	res := call[models.PaymentIntent](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathPaymentIntent,
		body:   map[string]int64{"amount": amount},
	}, dataRoot)
	if res.Success && res.Data.ClientSecret == "" {
		return models.Fail[models.PaymentIntent]("Payment creation failed.", res.StatusCode)
	}
	res.Data.Amount = amount
	return res
}

func (c *Client) GetWallet(ctx context.Context, sess *models.SessionContext) models.Result[models.Wallet] {
	return call[models.Wallet](ctx, c, sess, request{method: http.MethodGet, path: pathWallet}, "data")
}

func (c *Client) GetTransactions(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Transaction] {
	return call[[]models.Transaction](ctx, c, sess, request{method: http.MethodGet, path: pathTransactions}, "data")
}

// RequestWithdrawal routes to the client or therapist payout endpoint by role.
func (c *Client) RequestWithdrawal(ctx context.Context, sess *models.SessionContext, req models.WithdrawalRequest) models.Result[Empty] {
	path := pathClientWithdraw
	if sess != nil && sess.Role == models.RoleTherapist {
		path = pathTherapistPayout
	}
	return withFallback(call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   path,
		body:   req,
	}, dataRoot), "Withdrawal request submitted successfully")
}
