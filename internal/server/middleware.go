package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"routine-advisor/internal/logging"
)

type responseRecorder struct {
	b      int
	status int
	w      http.ResponseWriter
}

func (r *responseRecorder) Header() http.Header { return r.w.Header() }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.w.Write(p)
	r.b += n
	return n, err
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.w.WriteHeader(statusCode)
}

// logHandler attaches a request-scoped logger to the context and logs the
// outcome of every request.
func (s *Server) logHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		rr := &responseRecorder{w: w}
		log := s.log.WithFields(logrus.Fields{
			"http.req.path":   r.URL.Path,
			"http.req.method": r.Method,
			"http.req.id":     requestID,
			"http.req.remote": r.RemoteAddr,
		})
		log.Debug("request started")
		defer func() {
			log.WithFields(logrus.Fields{
				"http.resp.took_ms": int64(time.Since(start) / time.Millisecond),
				"http.resp.status":  rr.status,
				"http.resp.bytes":   rr.b,
			}).Info("request complete")
		}()

		w.Header().Set("X-Request-Id", requestID)
		ctx := logging.WithLogger(r.Context(), log)
		next.ServeHTTP(rr, r.WithContext(ctx))
	})
}
