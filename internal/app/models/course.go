package models

// Course represents a course in the catalog. Prerequisites are held as course
// identifiers, never as nested course records.
type Course struct {
	ID          int64  `json:"id" db:"id"`
	Version     int64  `json:"version" db:"version"`
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Credits     int    `json:"credits" db:"credits"`
	ProfessorID *int64 `json:"professorId,omitempty" db:"professor_id"` // Nullable

	// Relations (populated when needed)
	PrerequisiteIDs []int64    `json:"prerequisiteIds"`
	PrerequisiteOf  []int64    `json:"prerequisiteOf"`
	Professor       *Professor `json:"professor,omitempty"`
}
