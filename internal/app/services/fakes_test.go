package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yigit/academia/internal/app/models"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/prereqgraph"
)

// memStore is an in-memory stand-in for the database. Repositories built on
// it share state; memTxManager snapshots it so a failed transaction leaves
// no trace.
type memStore struct {
	nextID      int64
	courses     map[int64]models.Course
	prereqs     map[int64][]int64
	students    map[int64]models.Student
	professors  map[int64]models.Professor
	enrollments map[int64]map[int64]struct{}
	users       map[string]models.User

	// fail makes the named operation return the error
	fail map[string]error

	graphLocks   int
	transactions int
	rollbacks    int
}

func newMemStore() *memStore {
	return &memStore{
		courses:     map[int64]models.Course{},
		prereqs:     map[int64][]int64{},
		students:    map[int64]models.Student{},
		professors:  map[int64]models.Professor{},
		enrollments: map[int64]map[int64]struct{}{},
		users:       map[string]models.User{},
		fail:        map[string]error{},
	}
}

func (m *memStore) err(op string) error {
	return m.fail[op]
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) snapshot() *memStore {
	c := newMemStore()
	c.nextID = m.nextID
	for k, v := range m.courses {
		c.courses[k] = v
	}
	for k, v := range m.prereqs {
		c.prereqs[k] = append([]int64(nil), v...)
	}
	for k, v := range m.students {
		c.students[k] = v
	}
	for k, v := range m.professors {
		c.professors[k] = v
	}
	for k, v := range m.enrollments {
		set := make(map[int64]struct{}, len(v))
		for id := range v {
			set[id] = struct{}{}
		}
		c.enrollments[k] = set
	}
	for k, v := range m.users {
		c.users[k] = v
	}
	return c
}

func (m *memStore) restore(from *memStore) {
	m.nextID = from.nextID
	m.courses = from.courses
	m.prereqs = from.prereqs
	m.students = from.students
	m.professors = from.professors
	m.enrollments = from.enrollments
	m.users = from.users
}

func (m *memStore) repositories() Repositories {
	return Repositories{
		Courses:    &memCourseRepo{m},
		Students:   &memStudentRepo{m},
		Professors: &memProfessorRepo{m},
	}
}

// seedCourse stores a course with the given prerequisites and returns its id
func (m *memStore) seedCourse(code string, prereqIDs ...int64) int64 {
	id := m.id()
	m.courses[id] = models.Course{ID: id, Version: 1, Name: "Course " + code, Code: code, Credits: 4}
	if len(prereqIDs) > 0 {
		m.prereqs[id] = append([]int64(nil), prereqIDs...)
	}
	return id
}

// seedStudent stores a student enrolled in the given courses and returns its id
func (m *memStore) seedStudent(status models.StudentStatus, enrolled ...int64) int64 {
	id := m.id()
	m.students[id] = models.Student{
		ID:      id,
		Version: 1,
		Person: models.Person{
			FirstName: "Juan",
			LastName:  "Perez",
			Email:     fmt.Sprintf("juan%d@example.edu", id),
			BirthDate: time.Date(1990, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		EnrollmentNumber: fmt.Sprintf("2023%04d", id),
		Status:           status,
		CreatedBy:        "admin",
		CreatedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	set := map[int64]struct{}{}
	for _, c := range enrolled {
		set[c] = struct{}{}
	}
	m.enrollments[id] = set
	return id
}

func (m *memStore) enrolledIDs(studentID int64) []int64 {
	ids := make([]int64, 0, len(m.enrollments[studentID]))
	for id := range m.enrollments[studentID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// memTxManager runs fn against the shared store and restores the snapshot
// taken before fn when it fails.
type memTxManager struct {
	store *memStore
}

func (t *memTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	t.store.transactions++
	if err := t.store.err("Begin"); err != nil {
		return err
	}
	before := t.store.snapshot()
	if err := fn(ctx, t.store.repositories()); err != nil {
		t.store.restore(before)
		t.store.rollbacks++
		return err
	}
	return nil
}

type memCourseRepo struct{ m *memStore }

func (r *memCourseRepo) load(id int64) (*models.Course, bool) {
	c, ok := r.m.courses[id]
	if !ok {
		return nil, false
	}
	c.PrerequisiteIDs = append([]int64{}, r.m.prereqs[id]...)
	sort.Slice(c.PrerequisiteIDs, func(i, j int) bool { return c.PrerequisiteIDs[i] < c.PrerequisiteIDs[j] })
	c.PrerequisiteOf = []int64{}
	for other, ps := range r.m.prereqs {
		for _, p := range ps {
			if p == id {
				c.PrerequisiteOf = append(c.PrerequisiteOf, other)
			}
		}
	}
	sort.Slice(c.PrerequisiteOf, func(i, j int) bool { return c.PrerequisiteOf[i] < c.PrerequisiteOf[j] })
	return &c, true
}

func (r *memCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if err := r.m.err("Courses.Create"); err != nil {
		return err
	}
	for _, c := range r.m.courses {
		if c.Code == course.Code {
			return apperrors.ErrCourseCodeExists
		}
	}
	course.ID = r.m.id()
	course.Version = 1
	stored := *course
	stored.PrerequisiteIDs, stored.PrerequisiteOf, stored.Professor = nil, nil, nil
	r.m.courses[course.ID] = stored
	return nil
}

func (r *memCourseRepo) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if err := r.m.err("Courses.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.load(id)
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

func (r *memCourseRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.Course, error) {
	if err := r.m.err("Courses.GetByIDs"); err != nil {
		return nil, err
	}
	out := make(map[int64]*models.Course, len(ids))
	for _, id := range ids {
		if c, ok := r.load(id); ok {
			out[id] = c
		}
	}
	return out, nil
}

func (r *memCourseRepo) GetAll(ctx context.Context) ([]*models.Course, error) {
	if err := r.m.err("Courses.GetAll"); err != nil {
		return nil, err
	}
	out := make([]*models.Course, 0, len(r.m.courses))
	for id := range r.m.courses {
		c, _ := r.load(id)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if err := r.m.err("Courses.Update"); err != nil {
		return err
	}
	stored, ok := r.m.courses[course.ID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	if stored.Version != course.Version {
		return apperrors.ErrConflict
	}
	for id, c := range r.m.courses {
		if id != course.ID && c.Code == course.Code {
			return apperrors.ErrCourseCodeExists
		}
	}
	stored.Name, stored.Code, stored.Credits = course.Name, course.Code, course.Credits
	stored.Version++
	course.Version = stored.Version
	r.m.courses[course.ID] = stored
	return nil
}

func (r *memCourseRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.m.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.m.courses, id)
	delete(r.m.prereqs, id)
	return nil
}

func (r *memCourseRepo) HasDependents(ctx context.Context, id int64) (bool, error) {
	for _, ps := range r.m.prereqs {
		for _, p := range ps {
			if p == id {
				return true, nil
			}
		}
	}
	for _, set := range r.m.enrollments {
		if _, ok := set[id]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCourseRepo) SetProfessor(ctx context.Context, courseID int64, professorID *int64) error {
	c, ok := r.m.courses[courseID]
	if !ok {
		return apperrors.ErrCourseNotFound
	}
	c.ProfessorID = professorID
	c.Version++
	r.m.courses[courseID] = c
	return nil
}

func (r *memCourseRepo) LockByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.GetByID(ctx, id)
}

func (r *memCourseRepo) LockPrerequisiteGraph(ctx context.Context) error {
	if err := r.m.err("Courses.LockPrerequisiteGraph"); err != nil {
		return err
	}
	r.m.graphLocks++
	return nil
}

func (r *memCourseRepo) PrerequisiteEdges(ctx context.Context) ([]prereqgraph.Edge, error) {
	if err := r.m.err("Courses.PrerequisiteEdges"); err != nil {
		return nil, err
	}
	var edges []prereqgraph.Edge
	for course, ps := range r.m.prereqs {
		for _, p := range ps {
			edges = append(edges, prereqgraph.Edge{CourseID: course, PrerequisiteID: p})
		}
	}
	return edges, nil
}

func (r *memCourseRepo) AddPrerequisite(ctx context.Context, courseID, prerequisiteID int64) error {
	if err := r.m.err("Courses.AddPrerequisite"); err != nil {
		return err
	}
	for _, p := range r.m.prereqs[courseID] {
		if p == prerequisiteID {
			return nil
		}
	}
	r.m.prereqs[courseID] = append(r.m.prereqs[courseID], prerequisiteID)
	return nil
}

func (r *memCourseRepo) RemovePrerequisite(ctx context.Context, courseID, prerequisiteID int64) error {
	ps := r.m.prereqs[courseID]
	for i, p := range ps {
		if p == prerequisiteID {
			r.m.prereqs[courseID] = append(ps[:i:i], ps[i+1:]...)
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError("prerequisite not found")
}

type memStudentRepo struct{ m *memStore }

func (r *memStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if err := r.m.err("Students.Create"); err != nil {
		return err
	}
	for _, s := range r.m.students {
		if s.EnrollmentNumber == student.EnrollmentNumber {
			return apperrors.ErrEnrollmentNumberAlreadyExists
		}
		if s.Email == student.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	student.ID = r.m.id()
	student.Version = 1
	student.CreatedAt = time.Now().UTC()
	stored := *student
	stored.EnrolledCourseIDs = nil
	r.m.students[student.ID] = stored
	r.m.enrollments[student.ID] = map[int64]struct{}{}
	return nil
}

func (r *memStudentRepo) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	if err := r.m.err("Students.GetByID"); err != nil {
		return nil, err
	}
	s, ok := r.m.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return &s, nil
}

func (r *memStudentRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Student, error) {
	if err := r.m.err("Students.GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *memStudentRepo) GetByEnrollmentNumber(ctx context.Context, enrollmentNumber string) (*models.Student, error) {
	for _, s := range r.m.students {
		if s.EnrollmentNumber == enrollmentNumber {
			found := s
			return &found, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *memStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, int64, error) {
	var all []*models.Student
	for _, s := range r.m.students {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		found := s
		all = append(all, &found)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := int(filter.Offset)
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return all[start:end], total, nil
}

func (r *memStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if err := r.m.err("Students.Update"); err != nil {
		return err
	}
	stored, ok := r.m.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if stored.Version != student.Version {
		return apperrors.ErrConflict
	}
	for id, s := range r.m.students {
		if id != student.ID && s.EnrollmentNumber == student.EnrollmentNumber {
			return apperrors.ErrEnrollmentNumberAlreadyExists
		}
	}
	student.Version++
	updated := *student
	updated.EnrolledCourseIDs = nil
	r.m.students[student.ID] = updated
	return nil
}

func (r *memStudentRepo) EnrolledCourseIDs(ctx context.Context, studentID int64) ([]int64, error) {
	if err := r.m.err("Students.EnrolledCourseIDs"); err != nil {
		return nil, err
	}
	return r.m.enrolledIDs(studentID), nil
}

func (r *memStudentRepo) AddEnrollments(ctx context.Context, studentID int64, courseIDs []int64) error {
	if r.m.enrollments[studentID] == nil {
		r.m.enrollments[studentID] = map[int64]struct{}{}
	}
	// the first edge is written before an injected failure so rollback is observable
	for _, id := range courseIDs {
		r.m.enrollments[studentID][id] = struct{}{}
		if err := r.m.err("Students.AddEnrollments"); err != nil {
			return err
		}
	}
	return nil
}

func (r *memStudentRepo) RemoveEnrollment(ctx context.Context, studentID, courseID int64) error {
	if err := r.m.err("Students.RemoveEnrollment"); err != nil {
		return err
	}
	if _, ok := r.m.enrollments[studentID][courseID]; !ok {
		return apperrors.ErrNotEnrolled
	}
	delete(r.m.enrollments[studentID], courseID)
	return nil
}

type memProfessorRepo struct{ m *memStore }

func (r *memProfessorRepo) Create(ctx context.Context, professor *models.Professor) error {
	for _, p := range r.m.professors {
		if p.EmployeeNumber == professor.EmployeeNumber {
			return apperrors.ErrEmployeeNumberAlreadyExists
		}
	}
	professor.ID = r.m.id()
	professor.Version = 1
	r.m.professors[professor.ID] = *professor
	return nil
}

func (r *memProfessorRepo) GetByID(ctx context.Context, id int64) (*models.Professor, error) {
	p, ok := r.m.professors[id]
	if !ok {
		return nil, apperrors.ErrProfessorNotFound
	}
	return &p, nil
}

func (r *memProfessorRepo) GetAll(ctx context.Context) ([]*models.Professor, error) {
	out := make([]*models.Professor, 0, len(r.m.professors))
	for _, p := range r.m.professors {
		found := p
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memProfessorRepo) Update(ctx context.Context, professor *models.Professor) error {
	stored, ok := r.m.professors[professor.ID]
	if !ok {
		return apperrors.ErrProfessorNotFound
	}
	if stored.Version != professor.Version {
		return apperrors.ErrConflict
	}
	professor.Version++
	r.m.professors[professor.ID] = *professor
	return nil
}

func (r *memProfessorRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.m.professors[id]; !ok {
		return apperrors.ErrProfessorNotFound
	}
	delete(r.m.professors, id)
	return nil
}

func (r *memProfessorRepo) HasAssignedCourses(ctx context.Context, id int64) (bool, error) {
	for _, c := range r.m.courses {
		if c.ProfessorID != nil && *c.ProfessorID == id {
			return true, nil
		}
	}
	return false, nil
}

type memUserRepo struct{ m *memStore }

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := r.m.users[username]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}
	return &u, nil
}

func (r *memUserRepo) UpdateLastLogin(ctx context.Context, userID int64) error {
	if err := r.m.err("Users.UpdateLastLogin"); err != nil {
		return err
	}
	for name, u := range r.m.users {
		if u.ID == userID {
			now := time.Now()
			u.LastLoginAt = &now
			r.m.users[name] = u
		}
	}
	return nil
}
