package event

const OTPRequestedDestination string = "otp_requested"
const OTPRequestedConsumerNotification string = "otp_requested_notification"

// HeaderCorrelationID carries the request correlation id across the broker.
const HeaderCorrelationID string = "cID"

// OTPRequestedMessage asks for a one-time password to be delivered to Contact.
// Code is plaintext; it never leaves the broker into storage.
type OTPRequestedMessage struct {
	UserID   int64  `json:"user_id,string"`
	Username string `json:"username"`
	Contact  string `json:"contact"`
	Code     string `json:"one_time_password"`
	// ExpiresInMinutes is shown to the user.
	ExpiresInMinutes int `json:"expires_in_minutes"`
}
