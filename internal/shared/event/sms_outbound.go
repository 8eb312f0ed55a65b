package event

const SMSOutboundDestination string = "sms_outbound"

// SMSOutboundMessage is consumed by the external SMS gateway.
type SMSOutboundMessage struct {
	To   string `json:"to"`
	Body string `json:"body"`
}
