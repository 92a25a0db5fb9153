package chat

import (
	"fmt"
	"time"
)

// AdminSender is the sender label on system messages announcing joins,
// leaves, and the welcome.
const AdminSender = "Admin"

// ChatMessage is the payload of an outbound Message event, chat text and
// system text alike.
type ChatMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}

// LocationMessage carries a shared map position as a URL instead of text.
// No event emits it yet; the constructor exists for the location-sharing
// flow and is exercised only by tests.
type LocationMessage struct {
	Sender    string `json:"sender"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// NewChatMessage builds a message stamped with the current time in Unix
// milliseconds.
func NewChatMessage(sender, text string) ChatMessage {
	return ChatMessage{
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// NewLocationMessage builds a location message pointing at a Google Maps
// query for the given coordinates.
func NewLocationMessage(sender string, latitude, longitude float64) LocationMessage {
	return LocationMessage{
		Sender:    sender,
		URL:       fmt.Sprintf("https://google.com/maps?q=%v,%v", latitude, longitude),
		CreatedAt: time.Now().UnixMilli(),
	}
}
