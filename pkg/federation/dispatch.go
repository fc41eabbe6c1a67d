package federation

import (
	"bytes"
	"time"

	"github.com/ohler55/ojg/oj"
)

// Decode normalizes an inbound frame. Payloads that are not valid JSON,
// blank ones included, are wrapped as {"raw": text}.
func Decode(protocol ProtocolName, payload []byte) Message {
	content, err := oj.Parse(payload)
	if err != nil || len(bytes.TrimSpace(payload)) == 0 {
		content = map[string]any{"raw": string(payload)}
	}
	return Message{
		Protocol:   protocol,
		Content:    content,
		ReceivedAt: time.Now(),
	}
}
