package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/otpauth/internal/pkg/instrument"
	"github.com/shandysiswandi/otpauth/internal/pkg/uid"
)

// HeaderRequestID is read when the correlation header is absent.
const HeaderRequestID = "X-Request-ID"

const maxCIDLen = 128

// middlewareCorrelationID propagates the caller's correlation id, or mints
// one, into the context and echoes it on the response.
func middlewareCorrelationID(gen uid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := inboundCID(r)
			if cid == "" && gen != nil {
				cid = gen.Generate()
			}

			if cid != "" {
				w.Header().Set(instrument.CorrelationHeader, cid)
				r = r.WithContext(instrument.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// inboundCID returns a sanitised id from the request; values containing line
// breaks are discarded to keep them out of response headers.
func inboundCID(r *http.Request) string {
	for _, h := range []string{instrument.CorrelationHeader, HeaderRequestID} {
		v := r.Header.Get(h)
		if v == "" || strings.ContainsAny(v, "\r\n") {
			continue
		}
		if v = strings.TrimSpace(v); len(v) > maxCIDLen {
			v = v[:maxCIDLen]
		}
		if v != "" {
			return v
		}
	}
	return ""
}
