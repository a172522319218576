package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/noshow/pkg/handlers"
)

// Recover turns a handler panic into a 500 JSON error and logs the stack.
// A panic after the response has started only aborts the connection.
// http.ErrAbortHandler is re-raised untouched.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.Error("handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"panic", v,
					"stack", string(debug.Stack()),
				)
				if rec.wroteHeader {
					panic(http.ErrAbortHandler)
				}
				handlers.RespondJSON(w, http.StatusInternalServerError, handlers.ErrorResponse{
					Error: http.StatusText(http.StatusInternalServerError),
				})
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
