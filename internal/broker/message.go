package broker

import "time"

// Message is the chat payload exchanged with clients. Color and Timestamp are
// stamped by the router at dispatch time; values supplied by clients are
// ignored. A non-empty Recipient makes the message private.
type Message struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Color     string    `json:"color,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Recipient string    `json:"recipient,omitempty"`
}
