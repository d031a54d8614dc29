package kafka

import "github.com/segmentio/kafka-go"

// Event types carried in the "event" header
const (
	EventScoreComputed = "score.computed"
)

const headerEvent = "event"

func eventHeader(eventType string) kafka.Header {
	return kafka.Header{Key: headerEvent, Value: []byte(eventType)}
}

// EventType returns the "event" header of msg, or "" when absent
func EventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == headerEvent {
			return string(h.Value)
		}
	}
	return ""
}
