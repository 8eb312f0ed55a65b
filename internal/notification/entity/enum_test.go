package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    Channel
	}{
		{name: "Email", contact: "alice@example.com", want: ChannelEmail},
		{name: "Phone", contact: "+628123456789", want: ChannelSMS},
		{name: "Blank", contact: "  ", want: ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChannelFor(tt.contact))
		})
	}

	assert.Equal(t, "email", ChannelEmail.String())
	assert.Equal(t, "sms", ChannelSMS.String())
	assert.Equal(t, "unknown", ChannelUnknown.String())
}
