package dto

import "github.com/yigit/academia/internal/app/models"

// CreateCourseRequest represents course creation data
type CreateCourseRequest struct {
	Name            string  `json:"name" binding:"required,max=100" example:"Calculus II"`
	Code            string  `json:"code" binding:"required,coursecode" example:"CALC2"`
	Credits         int     `json:"credits" binding:"required,gt=0" example:"5"`
	ProfessorID     *int64  `json:"professorId,omitempty" binding:"omitempty,gt=0" example:"1"`
	PrerequisiteIDs []int64 `json:"prerequisiteIds,omitempty" binding:"omitempty,dive,gt=0" example:"1"`
}

// UpdateCourseRequest represents course update data
type UpdateCourseRequest struct {
	Name    string `json:"name" binding:"required,max=100" example:"Calculus II"`
	Code    string `json:"code" binding:"required,coursecode" example:"CALC2"`
	Credits int    `json:"credits" binding:"required,gt=0" example:"5"`
	Version int64  `json:"version" binding:"required,gt=0" example:"1"`
}

// CourseResponse is the public projection of a course
type CourseResponse struct {
	ID              int64              `json:"id" example:"2"`
	Version         int64              `json:"version" example:"1"`
	Name            string             `json:"name" example:"Calculus II"`
	Code            string             `json:"code" example:"CALC2"`
	Credits         int                `json:"credits" example:"5"`
	ProfessorID     *int64             `json:"professorId,omitempty" example:"1"`
	Professor       *ProfessorResponse `json:"professor,omitempty"`
	PrerequisiteIDs []int64            `json:"prerequisiteIds"`
	PrerequisiteOf  []int64            `json:"prerequisiteOf"`
}

// FromCourse converts a model.Course to a CourseResponse
func FromCourse(c *models.Course) CourseResponse {
	resp := CourseResponse{
		ID:              c.ID,
		Version:         c.Version,
		Name:            c.Name,
		Code:            c.Code,
		Credits:         c.Credits,
		ProfessorID:     c.ProfessorID,
		PrerequisiteIDs: nonNil(c.PrerequisiteIDs),
		PrerequisiteOf:  nonNil(c.PrerequisiteOf),
	}
	if c.Professor != nil {
		p := FromProfessor(c.Professor)
		resp.Professor = &p
	}
	return resp
}

// FromCourses converts a list of courses
func FromCourses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, FromCourse(c))
	}
	return out
}

// CycleCheckResponse answers whether a prerequisite edge would close a cycle
type CycleCheckResponse struct {
	CourseID         int64 `json:"courseId" example:"1"`
	PrerequisiteID   int64 `json:"prerequisiteId" example:"2"`
	WouldCreateCycle bool  `json:"wouldCreateCycle" example:"false"`
}

// PrerequisitesResponse lists a course's prerequisites
type PrerequisitesResponse struct {
	CourseID        int64   `json:"courseId" example:"2"`
	Transitive      bool    `json:"transitive" example:"false"`
	PrerequisiteIDs []int64 `json:"prerequisiteIds" example:"1"`
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// AssignProfessorRequest sets or clears (null) a course's professor
type AssignProfessorRequest struct {
	ProfessorID *int64 `json:"professorId" binding:"omitempty,gt=0" example:"1"`
}
