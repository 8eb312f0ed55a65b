package usecase

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/jwt"
)

// Refresh returns the identity of the current session. Tokens expire by time
// only, so nothing is re-issued.
func (s *Usecase) Refresh(ctx context.Context) (*jwt.Identity, error) {
	_, span := s.startSpan(ctx, "Refresh")
	defer span.End()

	id := jwt.GetAuth(ctx)
	if id == nil {
		return nil, goerror.NewUnauthorized()
	}

	return id, nil
}
