/*
Package user contains the user model and the in-memory room registry.

A User exists only for the lifetime of its connection; rooms are never
materialized as entities, membership is derived by comparing the Room field.
*/
package user

// User is a chat participant tied to one active connection.
type User struct {

	// ID is the opaque connection identifier assigned by the transport layer,
	// unique per active connection.
	ID string `json:"id"`

	// Username is the display name supplied by the client at join time.
	// Not globally unique.
	Username string `json:"username"`

	// Room is the name of the room the user joined.
	Room string `json:"room"`
}
