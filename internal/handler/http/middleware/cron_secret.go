package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

const CronSecretHeader = "X-Cron-Secret"

// CronSecret guards scheduler endpoints with a shared secret. An empty secret rejects everything.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(CronSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				response.HandleError(w, auth.ErrInvalidCronSecret)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
