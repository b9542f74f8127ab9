package wishlistws

import (
	"encoding/json"
	"fmt"
)

// Client actions accepted on the websocket $default route.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionPing        = "ping"
)

// Change kinds carried in outbound notifications, matching the stream's
// INSERT/MODIFY/REMOVE event names.
const (
	ChangeInsert = "insert"
	ChangeModify = "modify"
	ChangeRemove = "remove"
)

// ClientMessage is a message sent by a client over an established
// connection.
type ClientMessage struct {
	Action     string `json:"action"`
	WishlistID string `json:"wishlistId,omitempty"`
}

// ParseClientMessage parses a client message from a JSON request body.
func ParseClientMessage(body string) (*ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return nil, fmt.Errorf("invalid client message: %w", err)
	}
	if msg.Action == "" {
		return nil, fmt.Errorf("missing message action")
	}
	return &msg, nil
}

// ChangePayload carries the item state around a change. New is absent for
// removals, Old for inserts.
type ChangePayload struct {
	New map[string]interface{} `json:"new,omitempty"`
	Old map[string]interface{} `json:"old,omitempty"`
}

// ChangeMessage is the notification fanned out to every subscriber of a
// topic. The same serialized bytes are sent to every connection.
type ChangeMessage struct {
	Action     string        `json:"action"`
	WishlistID string        `json:"wishlistId"`
	Data       ChangePayload `json:"data"`
}

// EncodeChangeMessage serializes a change notification once, for delivery to
// all subscribers.
func EncodeChangeMessage(action, wishlistID string, payload ChangePayload) ([]byte, error) {
	b, err := json.Marshal(ChangeMessage{
		Action:     action,
		WishlistID: wishlistID,
		Data:       payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling change message: %w", err)
	}
	return b, nil
}

// AckMessage returns the reply confirming a client action.
func AckMessage(message, wishlistID string) []byte {
	b, _ := json.Marshal(map[string]string{
		"message":    message,
		"wishlistId": wishlistID,
	})
	return b
}

// ErrorMessage returns an error reply for a failed client action.
func ErrorMessage(errMsg string) []byte {
	b, _ := json.Marshal(map[string]string{"error": errMsg})
	return b
}

// PongMessage returns the reply to a ping action.
func PongMessage() []byte {
	b, _ := json.Marshal(map[string]string{"action": "pong"})
	return b
}
