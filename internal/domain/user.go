package domain

// User represents a registered sender of the finance assistant.
// Users are created once, on completion of the registration flow, and are
// never updated afterwards; there is no profile-edit operation.
type User struct {
	ID             int64
	SenderID       string
	Name           string
	RegisteredDate Date
	RegisteredTime Clock
}
