package models

import "time"

// User is the read-only projection of an account row maintained by the
// credential service. The backend only needs it to address notifications.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
