package services

import (
	"errors"
	"fmt"
	"log/slog"
	"misterfit_platform/misterfit/schema"
	"net/http"
	"unicode"

	"gorm.io/gorm"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain an uppercase letter, a lowercase letter, and a digit")
	}
	return nil
}

func getUserByEmail(txn *gorm.DB, email string) (schema.User, error) {
	user, err := schema.GetUserByEmail(email, txn)
	if err != nil {
		if errors.Is(err, schema.ErrUserNotFound) {
			return schema.User{}, CodedError(fmt.Errorf("no user found with email %v", email), http.StatusBadRequest)
		}
		return schema.User{}, CodedError(err, http.StatusInternalServerError)
	}
	return user, nil
}
