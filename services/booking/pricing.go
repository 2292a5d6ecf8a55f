package booking

import (
	"context"

	"mindease/models"
	"mindease/services/backend"

	"go.uber.org/zap"
)

// DefaultPrices are the session tiers in whole rupees.
var DefaultPrices = models.PriceTable{
	models.ModeVideo:   1500,
	models.ModeVoice:   1000,
	models.ModeMessage: 500,
}

// ValidPrices reports whether every mode is priced and video > voice > message > 0.
func ValidPrices(p models.PriceTable) bool {
	v, okV := p[models.ModeVideo]
	vo, okVo := p[models.ModeVoice]
	m, okM := p[models.ModeMessage]
	return okV && okVo && okM && v > vo && vo > m && m > 0
}

// Pricing resolves the price table, preferring the backend's published prices
// and falling back to the configured tiers.
type Pricing struct {
	api      backend.API
	fallback models.PriceTable
	logger   *zap.Logger
}

func NewPricing(api backend.API, fallback models.PriceTable, logger *zap.Logger) *Pricing {
	if !ValidPrices(fallback) {
		fallback = DefaultPrices
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pricing{api: api, fallback: fallback, logger: logger}
}

func (p *Pricing) Current(ctx context.Context, sess *models.SessionContext) models.PriceTable {
	if p.api != nil {
		res := p.api.GetPrices(ctx, sess)
		if res.Success && ValidPrices(res.Data) {
			return res.Data
		}
		if res.Success && len(res.Data) > 0 {
			p.logger.Warn("ignoring inconsistent backend prices", zap.Any("prices", res.Data))
		}
	}
	out := make(models.PriceTable, len(p.fallback))
	for k, v := range p.fallback {
		out[k] = v
	}
	return out
}
