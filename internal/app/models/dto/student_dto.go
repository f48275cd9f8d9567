package dto

import (
	"time"

	"github.com/yigit/academia/internal/app/models"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// PersonRequest carries the personal data shared by student and professor requests
type PersonRequest struct {
	FirstName string `json:"firstName" binding:"required,min=3,max=50" example:"Juan"`
	LastName  string `json:"lastName" binding:"required,min=3,max=50" example:"Perez"`
	Email     string `json:"email" binding:"required,email" example:"juan.perez@example.edu"`
	BirthDate string `json:"birthDate" binding:"required,datetime=2006-01-02" example:"1990-05-15"`
}

// ToPerson converts the request into the embedded model. BirthDate is already
// validated by the binding tag.
func (r PersonRequest) ToPerson() models.Person {
	birthDate, _ := time.Parse(DateLayout, r.BirthDate)
	return models.Person{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		BirthDate: birthDate,
	}
}

// CreateStudentRequest represents student creation data
type CreateStudentRequest struct {
	PersonRequest
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required,enrollmentnumber" example:"20230001"`
}

// UpdateStudentRequest represents student update data. Version must match the
// stored record.
type UpdateStudentRequest struct {
	PersonRequest
	EnrollmentNumber string `json:"enrollmentNumber" binding:"required,enrollmentnumber" example:"20230001"`
	Version          int64  `json:"version" binding:"required,gt=0" example:"1"`
}

// DeactivateStudentRequest carries the reason a student is deactivated
type DeactivateStudentRequest struct {
	Reason string `json:"reason" binding:"required,max=255" example:"Transferred to another university"`
}

// EnrollRequest lists the course IDs to enroll in, in request order
type EnrollRequest struct {
	CourseIDs []int64 `json:"courseIds" binding:"required,min=1,dive,gt=0" example:"1,2"`
}

// StudentResponse is the public projection of a student
type StudentResponse struct {
	ID                 int64      `json:"id" example:"1"`
	Version            int64      `json:"version" example:"1"`
	FirstName          string     `json:"firstName" example:"Juan"`
	LastName           string     `json:"lastName" example:"Perez"`
	Email              string     `json:"email" example:"juan.perez@example.edu"`
	BirthDate          string     `json:"birthDate" example:"1990-05-15"`
	EnrollmentNumber   string     `json:"enrollmentNumber" example:"20230001"`
	Status             string     `json:"status" example:"ACTIVE"`
	CreatedBy          string     `json:"createdBy" example:"admin"`
	CreatedAt          time.Time  `json:"createdAt"`
	ModifiedBy         *string    `json:"modifiedBy,omitempty"`
	ModifiedAt         *time.Time `json:"modifiedAt,omitempty"`
	DeactivatedBy      *string    `json:"deactivatedBy,omitempty"`
	DeactivatedAt      *time.Time `json:"deactivatedAt,omitempty"`
	DeactivationReason *string    `json:"deactivationReason,omitempty"`
	EnrolledCourseIDs  []int64    `json:"enrolledCourseIds"`
}

// FromStudent converts a model.Student to a StudentResponse
func FromStudent(s *models.Student) StudentResponse {
	enrolled := s.EnrolledCourseIDs
	if enrolled == nil {
		enrolled = []int64{}
	}
	return StudentResponse{
		ID:                 s.ID,
		Version:            s.Version,
		FirstName:          s.FirstName,
		LastName:           s.LastName,
		Email:              s.Email,
		BirthDate:          s.BirthDate.Format(DateLayout),
		EnrollmentNumber:   s.EnrollmentNumber,
		Status:             string(s.Status),
		CreatedBy:          s.CreatedBy,
		CreatedAt:          s.CreatedAt,
		ModifiedBy:         s.ModifiedBy,
		ModifiedAt:         s.ModifiedAt,
		DeactivatedBy:      s.DeactivatedBy,
		DeactivatedAt:      s.DeactivatedAt,
		DeactivationReason: s.DeactivationReason,
		EnrolledCourseIDs:  enrolled,
	}
}

// FromStudents converts a list of students
func FromStudents(students []*models.Student) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, FromStudent(s))
	}
	return out
}

// EnrollmentResponse is the result of an enrollment batch
type EnrollmentResponse struct {
	StudentID       int64   `json:"studentId" example:"1"`
	EnrolledCourses []int64 `json:"enrolledCourses" example:"1,2"`
	Added           []int64 `json:"added" example:"2"`
}

// StudentListResponse represents a page of students
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
	PaginationInfo
}
