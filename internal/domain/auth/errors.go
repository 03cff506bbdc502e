// Package auth holds the errors of the request authentication boundary. Tokens are issued by
// the external identity service.
package auth

import "errors"

var (
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrEmployeeClaimMissing   = errors.New("token has no employee identity")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrInvalidCronSecret      = errors.New("invalid cron secret")
)
