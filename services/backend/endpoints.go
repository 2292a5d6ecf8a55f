package backend

import "fmt"

const (
	pathProfile          = "/users/get_profile/"
	pathProfileImage     = "/users/profile_image/"
	pathVerifyPassword   = "/users/verify_password/"
	pathChangePassword   = "/users/change_password/"
	pathVerifyEmail      = "/users/verifyEmail/"
	pathTokenRefresh     = "/users/token/refresh/"
	pathCreateAppt       = "/users/create_appointment/"
	pathUserAppts        = "/users/get_appointments/"
	pathMarkAttended     = "/users/mark_as_attended/"
	pathPaymentIntent    = "/users/create-payment-intent/"
	pathFeedback         = "/users/create_feedback/"
	pathUserNotes        = "/users/get_notifications/"
	pathMarkRead         = "/users/mark_as_read/"
	pathMarkAllRead      = "/users/mark_all_as_read/"
	pathClientWithdraw   = "/users/client_withdraw_request/"
	pathTherapists       = "/admin/get_therapists/"
	pathPrices           = "/admin/get-prices/"
	pathTherapistAppts   = "/therapists/get_therapist_appointments/"
	pathMakeCompleted    = "/therapists/make_completed/"
	pathWallet           = "/therapists/get_wallet_amount/"
	pathTransactions     = "/therapists/get_transactions/"
	pathTherapistPayout  = "/therapists/request_withdraw/"
	pathTherapistNotes   = "/therapists/get_notifications/"
	idempotencyKeyHeader = "Idempotency-Key"
)

func pathCancelSession(id fmt.Stringer) string {
	return fmt.Sprintf("/users/cancel_session/%s/", id)
}

func pathTherapistInfo(id fmt.Stringer) string {
	return fmt.Sprintf("/admin/get_therapist_information/%s/", id)
}
