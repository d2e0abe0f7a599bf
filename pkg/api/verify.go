package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/slack-go/slack"

	"kidoku/pkg/logger"
)

// maxBodyBytes caps inbound webhook bodies; Slack payloads are small.
const maxBodyBytes = 1 << 20

// verifySignature checks the request's signing-secret headers before the
// wrapped handler runs. The body is restored so handlers can parse it.
func verifySignature(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		sv, err := slack.NewSecretsVerifier(r.Header, secret)
		if err != nil {
			logger.Warn("signature_headers_invalid", "path", r.URL.Path, "remote", r.RemoteAddr, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := sv.Write(body); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := sv.Ensure(); err != nil {
			logger.Warn("signature_mismatch", "path", r.URL.Path, "remote", r.RemoteAddr)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}
