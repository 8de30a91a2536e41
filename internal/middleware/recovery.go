package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/newrelic/go-agent/v3/newrelic"

	apperrors "github.com/aditya/go-freight/internal/errors"
	"github.com/aditya/go-freight/pkg/utils"
)

// Recovery turns a panic into a 500 and reports it on the current transaction.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Printf("panic recovered: %v\n%s", rec, debug.Stack())
				newrelic.FromContext(r.Context()).NoticeError(fmt.Errorf("panic: %v", rec))

				utils.Error(w, apperrors.InternalError("an unexpected error occurred"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
