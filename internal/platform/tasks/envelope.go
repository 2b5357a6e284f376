// Package tasks implements the Task Queue (C7): a durable FIFO broker
// contract with typed payloads, at-least-once delivery, and bounded
// application-level retries, backed by Kafka.
package tasks

import "encoding/json"

// Type names one of the four task kinds spec.md §4.7 defines. Each type
// has its own topic.
type Type string

const (
	TypeFetchAndSubscribeToLocation Type = "FetchAndSubscribeToLocation"
	TypeGetNearbyLocations          Type = "GetNearbyLocations"
	TypeSendEmailNotification       Type = "SendEmailNotification"
	TypeSearchLocationsByText       Type = "SearchLocationsByText"
)

// Envelope is the wire format every task topic carries. Attempt is the
// application-level retry counter — distinct from Kafka's own delivery
// redelivery — incremented on every UnexpectedError outcome and capped at
// maxAttempts.
type Envelope struct {
	TaskID  string          `json:"taskId"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Attempt int             `json:"attempt"`
}
