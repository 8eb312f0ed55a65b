package entity

// OTPDelivery is a one-time password waiting to reach its owner.
type OTPDelivery struct {
	UserID           int64
	Username         string
	Contact          string
	Code             string
	ExpiresInMinutes int
}
