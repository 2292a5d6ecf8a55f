package wallet

import (
	"context"
	"fmt"
	"strings"

	"mindease/models"
	"mindease/services/backend"
	"mindease/services/listing"
	"mindease/utils"

	"go.uber.org/zap"
)

// DefaultMinimumWithdrawal is the smallest payout the backend accepts, in rupees.
const DefaultMinimumWithdrawal = 500

// WithdrawalError is a withdrawal rejected before any backend call.
type WithdrawalError struct {
	Field   string
	Message string
}

func (e *WithdrawalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// View is the wallet screen: balance plus one page of transactions.
type View struct {
	Balance      int64                            `json:"balance"`
	Transactions listing.Page[models.Transaction] `json:"transactions"`
}

type Service struct {
	api     backend.API
	minimum int64
	logger  *zap.Logger
}

func NewService(api backend.API, minimum int64, logger *zap.Logger) *Service {
	if minimum <= 0 {
		minimum = DefaultMinimumWithdrawal
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, minimum: minimum, logger: logger}
}

func (s *Service) View(ctx context.Context, sess *models.SessionContext, page int) (*View, error) {
	w := s.api.GetWallet(ctx, sess)
	if err := backend.Err(w); err != nil {
		return nil, err
	}
	tx := s.api.GetTransactions(ctx, sess)
	if err := backend.Err(tx); err != nil {
		return nil, err
	}
	return &View{
		Balance:      w.Data.Balance,
		Transactions: listing.Paginate(tx.Data, page, listing.TransactionPageSize),
	}, nil
}

// ValidateWithdrawal checks a request against the balance and payout rules.
func ValidateWithdrawal(req models.WithdrawalRequest, balance, minimum int64) error {
	req.UPIID = strings.TrimSpace(req.UPIID)
	switch {
	case req.Amount == 0 && req.UPIID == "":
		return &WithdrawalError{Field: "amount", Message: "Please enter amount and UPI ID."}
	case req.Amount <= 0:
		return &WithdrawalError{Field: "amount", Message: "Please enter a valid amount."}
	case req.UPIID == "":
		return &WithdrawalError{Field: "upi_id", Message: "Please enter your UPI ID."}
	case req.Amount > balance:
		return &WithdrawalError{Field: "amount", Message: "Insufficient balance."}
	case req.Amount < minimum:
		return &WithdrawalError{Field: "amount", Message: fmt.Sprintf("Minimum withdrawal amount is ₹%d.", minimum)}
	}
	if err := utils.ValidateStruct(req); err != nil {
		return &WithdrawalError{Field: "upi_id", Message: "Please enter a valid UPI ID."}
	}
	return nil
}

// Withdraw validates against the live balance and submits the payout request.
func (s *Service) Withdraw(ctx context.Context, sess *models.SessionContext, req models.WithdrawalRequest) (string, error) {
	if req.Amount <= 0 || strings.TrimSpace(req.UPIID) == "" {
		return "", ValidateWithdrawal(req, 0, s.minimum)
	}
	w := s.api.GetWallet(ctx, sess)
	if err := backend.Err(w); err != nil {
		return "", err
	}
	if err := ValidateWithdrawal(req, w.Data.Balance, s.minimum); err != nil {
		return "", err
	}
	req.UPIID = strings.TrimSpace(req.UPIID)
	res := s.api.RequestWithdrawal(ctx, sess, req)
	if err := backend.Err(res); err != nil {
		return "", err
	}
	s.logger.Info("withdrawal requested", zap.String("user", sess.UserID), zap.Int64("amount", req.Amount))
	return res.Message, nil
}
