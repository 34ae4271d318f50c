package types

// User represents a row of the users table.
type User struct {
	// ID is assigned by the database and never changes.
	ID int `json:"id" db:"id"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Age is nil when it was never supplied.
	Age *int `json:"age" db:"age"`

	// Active is nil when it was never supplied.
	Active *bool `json:"active" db:"active"`
}
