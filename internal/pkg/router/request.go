package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
)

// Request is the inbound request seen by handlers. Cookies set through it are
// written only when the handler succeeds.
type Request struct {
	*http.Request

	cookies []*http.Cookie
}

func (r *Request) GetParam(key string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(key)
}

// GetParamInt64 parses a numeric path parameter such as a user id.
func (r *Request) GetParamInt64(key string) (int64, error) {
	v, err := strconv.ParseInt(r.GetParam(key), 10, 64)
	if err != nil {
		return 0, goerror.NewInvalidFormat(key + " must be an integer")
	}
	return v, nil
}

// CookieValue returns the named cookie's value, or "" when absent.
func (r *Request) CookieValue(name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

func (r *Request) SetCookie(c *http.Cookie) {
	r.cookies = append(r.cookies, c)
}

// DecodeBody strictly decodes a single JSON object into dst: unknown fields
// and trailing data are rejected.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if dec.Decode(dst) != nil || !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		return goerror.NewInvalidFormat()
	}

	return nil
}
