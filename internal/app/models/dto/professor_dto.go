package dto

import "github.com/yigit/academia/internal/app/models"

// ProfessorRequest represents professor create and update data
type ProfessorRequest struct {
	PersonRequest
	EmployeeNumber string `json:"employeeNumber" binding:"required,max=20" example:"D12345"`
	Department     string `json:"department" binding:"required,max=100" example:"Mathematics"`
	Version        int64  `json:"version,omitempty" example:"1"`
}

// ProfessorResponse is the public projection of a professor
type ProfessorResponse struct {
	ID             int64  `json:"id" example:"1"`
	Version        int64  `json:"version" example:"1"`
	FirstName      string `json:"firstName" example:"Ana"`
	LastName       string `json:"lastName" example:"Gomez"`
	Email          string `json:"email" example:"ana.gomez@example.edu"`
	BirthDate      string `json:"birthDate" example:"1975-02-01"`
	EmployeeNumber string `json:"employeeNumber" example:"D12345"`
	Department     string `json:"department" example:"Mathematics"`
}

// FromProfessor converts a model.Professor to a ProfessorResponse
func FromProfessor(p *models.Professor) ProfessorResponse {
	return ProfessorResponse{
		ID:             p.ID,
		Version:        p.Version,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		BirthDate:      p.BirthDate.Format(DateLayout),
		EmployeeNumber: p.EmployeeNumber,
		Department:     p.Department,
	}
}

// FromProfessors converts a list of professors
func FromProfessors(professors []*models.Professor) []ProfessorResponse {
	out := make([]ProfessorResponse, 0, len(professors))
	for _, p := range professors {
		out = append(out, FromProfessor(p))
	}
	return out
}
