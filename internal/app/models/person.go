package models

import "time"

// Person holds the personal data shared by students and professors. It is
// embedded in both records rather than acting as a base type.
type Person struct {
	FirstName string    `json:"firstName" db:"first_name" example:"Juan"`
	LastName  string    `json:"lastName" db:"last_name" example:"Perez"`
	Email     string    `json:"email" db:"email" example:"juan.perez@example.edu"`
	BirthDate time.Time `json:"birthDate" db:"birth_date" example:"1990-05-15T00:00:00Z"`
}
