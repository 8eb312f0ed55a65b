package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpauth/internal/auth/entity"
	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/hash"
)

const userColumns = `id, username, contact, role, password_hash, password_salt, created_at, updated_at`

type userRow struct {
	ID           int64
	Username     string
	Contact      string
	Role         string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r userRow) toEntity() entity.User {
	return entity.User{
		ID:           r.ID,
		Username:     r.Username,
		Contact:      r.Contact,
		Role:         entity.ParseRole(r.Role),
		PasswordHash: r.PasswordHash,
		PasswordSalt: r.PasswordSalt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// getUser returns the first row matching filter, which may carry its own
// ORDER BY.
func (s *DB) getUser(ctx context.Context, filter string, arg any) (*entity.User, error) {
	rows, err := s.conn.Query(ctx, `SELECT `+userColumns+` FROM auth_users WHERE `+filter+` LIMIT 1`, arg)
	if err != nil {
		return nil, s.mapError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[userRow])
	if err != nil {
		return nil, s.mapError(err)
	}

	u := row.toEntity()
	return &u, nil
}

// identifierFilter prefers a contact match over a username match so a
// username that spells out someone's phone number never captures their OTP.
const identifierFilter = `(username = $1::text OR contact = $1::text OR contact = lower($1::text))
	ORDER BY (contact = $1::text OR contact = lower($1::text)) DESC, id`

// GetUserByIdentifier resolves a username, email address or phone number.
func (s *DB) GetUserByIdentifier(ctx context.Context, identifier string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByIdentifier")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, identifierFilter, identifier)
}

func (s *DB) GetUserByUsername(ctx context.Context, username string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByUsername")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, `username = $1`, username)
}

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	return s.getUser(ctx, `id = $1`, id)
}

func (s *DB) GetUserList(ctx context.Context) (_ []entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT `+userColumns+` FROM auth_users ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[userRow])
	if err != nil {
		return nil, s.mapError(err)
	}

	result := make([]entity.User, 0, len(items))
	for _, item := range items {
		result = append(result, item.toEntity())
	}

	return result, nil
}

func (s *DB) CreateUser(ctx context.Context, in entity.NewUser) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		INSERT INTO auth_users (id, username, contact, role, password_hash, password_salt)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		in.ID, in.Username, in.Contact, in.Role.String(), in.PasswordHash, in.PasswordSalt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[userRow])
	if err != nil {
		return nil, s.mapError(err)
	}

	u := row.toEntity()
	return &u, nil
}

func (s *DB) UpdateUserPassword(ctx context.Context, id int64, pair hash.Pair) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUserPassword")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE auth_users SET password_hash = $2, password_salt = $3, updated_at = NOW()
		WHERE id = $1`, id, pair.Hash, pair.Salt)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteUser")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM auth_users WHERE id = $1`, id)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
