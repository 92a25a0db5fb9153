// Package randx generates the opaque identifiers handed out by the server.
package randx

import "github.com/google/uuid"

// ConnID returns a new opaque connection identifier. Each WebSocket
// connection gets exactly one, assigned at upgrade time.
func ConnID() string {
	return uuid.New().String()
}
