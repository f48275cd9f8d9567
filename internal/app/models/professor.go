package models

// Professor defines the professor model based on the 'professors' table
type Professor struct {
	ID      int64 `json:"id" db:"id" example:"1"`
	Version int64 `json:"version" db:"version" example:"1"`
	Person
	EmployeeNumber string `json:"employeeNumber" db:"employee_number" example:"D12345"` // Unique staff number
	Department     string `json:"department" db:"department" example:"Mathematics"`
}
