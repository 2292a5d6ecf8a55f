package backend

import (
	"fmt"
	"net/http"

	"mindease/models"
	"mindease/utils"
)

// Failure is a failed backend call carried as a Go error by the domain services.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("backend failure (%d): %s", f.Status, f.Message)
}

// Unauthorized reports whether the session is no longer usable.
func (f *Failure) Unauthorized() bool {
	return f.Status == http.StatusUnauthorized || f.Status == http.StatusForbidden
}

// Err converts a failed Result into a *Failure and a successful one into nil.
func Err[T any](res models.Result[T]) error {
	if res.Success {
		return nil
	}
	msg := res.Message
	if msg == "" {
		msg = utils.GenericFailureMessage
	}
	return &Failure{Status: res.StatusCode, Message: msg}
}
