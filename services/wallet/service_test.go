package wallet

import (
	"context"
	"testing"

	"mindease/models"
	"mindease/services/backend/backendmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var sess = &models.SessionContext{ID: "s1", UserID: "7", Role: models.RoleUser}

func TestValidateWithdrawal(t *testing.T) {
	cases := []struct {
		name    string
		req     models.WithdrawalRequest
		balance int64
		field   string
	}{
		{"missing both", models.WithdrawalRequest{}, 1000, "amount"},
		{"negative", models.WithdrawalRequest{Amount: -5, UPIID: "a@okaxis"}, 1000, "amount"},
		{"missing upi", models.WithdrawalRequest{Amount: 600}, 1000, "upi_id"},
		{"above balance", models.WithdrawalRequest{Amount: 1200, UPIID: "a@okaxis"}, 1000, "amount"},
		{"below minimum", models.WithdrawalRequest{Amount: 100, UPIID: "a@okaxis"}, 1000, "amount"},
		{"bad upi", models.WithdrawalRequest{Amount: 600, UPIID: "not-an-upi"}, 1000, "upi_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateWithdrawal(tc.req, tc.balance, DefaultMinimumWithdrawal)
			var werr *WithdrawalError
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, tc.field, werr.Field)
		})
	}
	assert.NoError(t, ValidateWithdrawal(models.WithdrawalRequest{Amount: 500, UPIID: "asha.rao@okhdfc"}, 500, DefaultMinimumWithdrawal))
}

func TestWithdrawAboveBalanceNeverSubmits(t *testing.T) {
	api := &backendmock.API{}
	api.On("GetWallet", mock.Anything, sess).Return(models.Ok(models.Wallet{Balance: 800}, "", 200))

	_, err := NewService(api, 0, nil).Withdraw(context.Background(), sess, models.WithdrawalRequest{Amount: 900, UPIID: "a@okaxis"})
	var werr *WithdrawalError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "Insufficient balance.", werr.Message)
	api.AssertNotCalled(t, "RequestWithdrawal", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawMissingInputSkipsBalanceLookup(t *testing.T) {
	api := &backendmock.API{}
	_, err := NewService(api, 0, nil).Withdraw(context.Background(), sess, models.WithdrawalRequest{})
	var werr *WithdrawalError
	require.ErrorAs(t, err, &werr)
	api.AssertExpectations(t)
}

func TestWithdrawSubmits(t *testing.T) {
	api := &backendmock.API{}
	api.On("GetWallet", mock.Anything, sess).Return(models.Ok(models.Wallet{Balance: 800}, "", 200))
	api.On("RequestWithdrawal", mock.Anything, sess, models.WithdrawalRequest{Amount: 600, UPIID: "a@okaxis"}).
		Return(backendmock.OK("Withdrawal request submitted successfully"))

	msg, err := NewService(api, 0, nil).Withdraw(context.Background(), sess, models.WithdrawalRequest{Amount: 600, UPIID: " a@okaxis "})
	require.NoError(t, err)
	assert.Equal(t, "Withdrawal request submitted successfully", msg)
	api.AssertExpectations(t)
}

func TestViewPaginatesTransactions(t *testing.T) {
	api := &backendmock.API{}
	txs := make([]models.Transaction, 12)
	for i := range txs {
		txs[i] = models.Transaction{ID: models.ID(string(rune('a' + i))), Amount: int64(i)}
	}
	api.On("GetWallet", mock.Anything, sess).Return(models.Ok(models.Wallet{Balance: 300}, "", 200))
	api.On("GetTransactions", mock.Anything, sess).Return(models.Ok(txs, "", 200))

	v, err := NewService(api, 0, nil).View(context.Background(), sess, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(300), v.Balance)
	assert.Equal(t, 3, v.Transactions.TotalPages)
	assert.Len(t, v.Transactions.Items, 2)
}
