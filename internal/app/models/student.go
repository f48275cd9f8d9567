package models

import "time"

// StudentStatus is the lifecycle state of a student record
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "ACTIVE"
	StudentStatusInactive StudentStatus = "INACTIVE"
)

// Student defines the student model based on the 'students' table
type Student struct {
	ID      int64 `json:"id" db:"id" example:"1"`
	Version int64 `json:"version" db:"version" example:"1"`
	Person
	EnrollmentNumber string        `json:"enrollmentNumber" db:"enrollment_number" example:"20230001"`
	Status           StudentStatus `json:"status" db:"status" example:"ACTIVE"`

	CreatedBy          string     `json:"createdBy" db:"created_by" example:"admin"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	ModifiedBy         *string    `json:"modifiedBy,omitempty" db:"modified_by"`
	ModifiedAt         *time.Time `json:"modifiedAt,omitempty" db:"modified_at"`
	DeactivatedBy      *string    `json:"deactivatedBy,omitempty" db:"deactivated_by"`
	DeactivatedAt      *time.Time `json:"deactivatedAt,omitempty" db:"deactivated_at"`
	DeactivationReason *string    `json:"deactivationReason,omitempty" db:"deactivation_reason" example:"Transferred"`

	// Relations (populated when needed)
	EnrolledCourseIDs []int64 `json:"enrolledCourseIds,omitempty"`
}

// IsActive reports whether the student may enroll in courses
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// IsEnrolledIn reports whether courseID is in the student's enrollment set
func (s *Student) IsEnrolledIn(courseID int64) bool {
	for _, id := range s.EnrolledCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

// StudentFilter narrows student listings
type StudentFilter struct {
	Status *StudentStatus
	Offset uint64
	Limit  int
}
