package middleware

import (
	"crypto/subtle"
	"net/http"

	"visadocs/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKeyAuth gates admin routes behind a shared static key. This is a
// deliberate placeholder: per-user credentials and password storage are out
// of scope, but the dashboard must not be open to the internet either.
// The comparison is constant-time so the key cannot be probed byte by byte.
func AdminKeyAuth(key string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			if key == "" {
				log.Error("Admin route hit but no admin key configured", "path", r.URL.Path)
				rejectUnauthorized(w)
				return
			}

			provided := r.Header.Get(AdminKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				log.Warn("Admin authentication failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				rejectUnauthorized(w)
				return
			}

			next(w, r, ps)
		}
	}
}

func rejectUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
