package seed

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appModels "github.com/yigit/academia/internal/app/models"
	appServices "github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/config"
	"github.com/yigit/academia/internal/pkg/auth"
)

type fakeUsers struct {
	created []*appModels.User
	taken   map[string]bool
}

func (f *fakeUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	return f.taken[username], nil
}

func (f *fakeUsers) Create(ctx context.Context, user *appModels.User) error {
	f.created = append(f.created, user)
	return nil
}

// fakeCourses embeds the interface; only the methods the seeder uses are implemented.
type fakeCourses struct {
	appServices.CourseService
	courses []*appModels.Course
	prereqs map[int64][]int64
	failOn  string
}

func (f *fakeCourses) GetAllCourses(ctx context.Context) ([]*appModels.Course, error) {
	return f.courses, nil
}

func (f *fakeCourses) CreateCourse(ctx context.Context, course *appModels.Course, prerequisiteIDs []int64) error {
	if course.Code == f.failOn {
		return errors.New("insert failed")
	}
	course.ID = int64(len(f.courses) + 1)
	f.courses = append(f.courses, course)
	f.prereqs[course.ID] = prerequisiteIDs
	return nil
}

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Seed.Enabled = true
	cfg.Seed.AdminUsername = "admin"
	cfg.Seed.AdminPassword = "changeme123"
	return cfg
}

func TestCreateDefaultData_FreshDatabase(t *testing.T) {
	users := &fakeUsers{taken: map[string]bool{}}
	courses := &fakeCourses{prereqs: map[int64][]int64{}}

	err := CreateDefaultData(context.Background(), seedConfig(), users, courses, zerolog.New(io.Discard))
	require.NoError(t, err)

	require.Len(t, users.created, 1)
	admin := users.created[0]
	assert.Equal(t, appModels.RoleAdmin, admin.RoleType)
	assert.True(t, admin.IsActive)
	assert.True(t, auth.CheckPassword(admin.Password, "changeme123"))

	require.Len(t, courses.courses, 2)
	assert.Equal(t, "CALC1", courses.courses[0].Code)
	assert.Equal(t, []int64{courses.courses[0].ID}, courses.prereqs[courses.courses[1].ID])
}

func TestCreateDefaultData_Idempotent(t *testing.T) {
	users := &fakeUsers{taken: map[string]bool{"admin": true}}
	courses := &fakeCourses{
		courses: []*appModels.Course{{ID: 1, Code: "CALC1"}, {ID: 2, Code: "CALC2"}},
		prereqs: map[int64][]int64{},
	}

	require.NoError(t, CreateDefaultData(context.Background(), seedConfig(), users, courses, zerolog.New(io.Discard)))
	assert.Empty(t, users.created)
	assert.Len(t, courses.courses, 2)
}

func TestCreateDefaultData_JoinsFailures(t *testing.T) {
	users := &fakeUsers{taken: map[string]bool{}}
	courses := &fakeCourses{prereqs: map[int64][]int64{}, failOn: "CALC1"}

	err := CreateDefaultData(context.Background(), seedConfig(), users, courses, zerolog.New(io.Discard))
	assert.ErrorContains(t, err, "insert failed")
	assert.Len(t, users.created, 1, "admin is still created")
	assert.Empty(t, courses.courses, "CALC2 is skipped without CALC1")
}
