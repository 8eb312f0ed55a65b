package entity

import "strings"

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 1
	ChannelSMS     Channel = 2
)

// ChannelFor picks the delivery channel from the shape of a contact: an
// address with "@" goes by email, anything else is treated as a phone number.
func ChannelFor(contact string) Channel {
	contact = strings.TrimSpace(contact)
	switch {
	case contact == "":
		return ChannelUnknown
	case strings.Contains(contact, "@"):
		return ChannelEmail
	default:
		return ChannelSMS
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "unknown"
	}
}
