package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// ServerErrorMessage тело ответа при непредвиденной ошибке
const ServerErrorMessage = "Server error"

// Recoverer перехватывает панику в обработчике, логирует её и отвечает 500.
func Recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("Unhandled panic in handler",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("panic", fmt.Sprint(rvr)),
					zap.ByteString("stack", debug.Stack()),
				)

				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.WriteHeader(http.StatusInternalServerError)
				if _, err := w.Write([]byte(ServerErrorMessage)); err != nil {
					logger.Error("Error writing response", zap.Error(err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
