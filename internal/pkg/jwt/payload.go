package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

// Kind discriminates the token kinds.
type Kind string

const (
	KindSession      Kind = "session"
	KindDevice       Kind = "device"
	KindOTPChallenge Kind = "otp_challenge"
)

var errShape = errors.New("payload shape")

// Payload is the closed set of token payloads: SessionPayload, DevicePayload
// and ChallengePayload.
type Payload interface {
	Kind() Kind
	validate() error
}

// Identity is the user-shaped data carried by a session token.
type Identity struct {
	UserID   int64  `json:"user_id,string"`
	Username string `json:"username"`
	Contact  string `json:"contact"`
	Role     string `json:"role"`
}

// SessionPayload proves an authenticated identity.
type SessionPayload struct {
	Identity Identity
}

func (SessionPayload) Kind() Kind { return KindSession }

func (p SessionPayload) validate() error {
	if p.Identity.UserID == 0 || p.Identity.Username == "" {
		return errShape
	}
	return nil
}

// DevicePayload asserts the device completed an OTP login for UserID.
type DevicePayload struct {
	UserID int64
}

func (DevicePayload) Kind() Kind { return KindDevice }

func (p DevicePayload) validate() error {
	if p.UserID == 0 {
		return errShape
	}
	return nil
}

// ChallengePayload carries the verification pair of a pending OTP. It never
// holds the plaintext code or the user identity.
type ChallengePayload struct {
	Hash string `json:"hash"`
	Salt string `json:"salt"`
}

func (ChallengePayload) Kind() Kind { return KindOTPChallenge }

func (p ChallengePayload) validate() error {
	if p.Hash == "" || p.Salt == "" {
		return errShape
	}
	return nil
}

func marshalData(p Payload) (json.RawMessage, error) {
	switch v := p.(type) {
	case SessionPayload:
		return json.Marshal(v.Identity)
	case DevicePayload:
		return json.Marshal(strconv.FormatInt(v.UserID, 10))
	case ChallengePayload:
		return json.Marshal(v)
	default:
		return nil, ErrNoPayload
	}
}

func unmarshalData(kind Kind, data json.RawMessage) (Payload, error) {
	var p Payload

	switch kind {
	case KindSession:
		var id Identity
		if err := strictDecode(data, &id); err != nil {
			return nil, err
		}
		p = SessionPayload{Identity: id}
	case KindDevice:
		var s string
		if err := strictDecode(data, &s); err != nil {
			return nil, err
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		p = DevicePayload{UserID: uid}
	case KindOTPChallenge:
		var c ChallengePayload
		if err := strictDecode(data, &c); err != nil {
			return nil, err
		}
		p = c
	default:
		return nil, errShape
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func strictDecode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
