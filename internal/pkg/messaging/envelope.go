package messaging

import (
	"encoding/json"
	"time"
)

// envelope carries key and headers for brokers whose wire format is body only.
type envelope struct {
	Key       string            `json:"key,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Body      []byte            `json:"body"`
	Timestamp time.Time         `json:"ts"`
}

func encodeEnvelope(msg Outgoing, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{Key: msg.Key, Headers: msg.Headers, Body: msg.Body, Timestamp: now})
}

func decodeEnvelope(topic, id string, raw []byte) Message {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Body == nil {
		return Message{ID: id, Topic: topic, Body: raw}
	}
	return Message{ID: id, Topic: topic, Key: env.Key, Body: env.Body, Headers: env.Headers, Timestamp: env.Timestamp}
}
