package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/academia/internal/app/models"
	appServices "github.com/yigit/academia/internal/app/services"
	"github.com/yigit/academia/internal/config"
	"github.com/yigit/academia/internal/pkg/apperrors"
	"github.com/yigit/academia/internal/pkg/auth"
)

// UserStore is the account storage the seeder writes to
type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *appModels.User) error
}

// DefaultCourses is the starter catalog: CALC2 requires CALC1.
var DefaultCourses = []struct {
	Code         string
	Name         string
	Credits      int
	Prerequisite string
}{
	{Code: "CALC1", Name: "Calculus I", Credits: 5},
	{Code: "CALC2", Name: "Calculus II", Credits: 5, Prerequisite: "CALC1"},
}

// CreateDefaultData creates the administrator account and the starter catalog
// when they don't exist. Every step runs even if an earlier one failed; the
// failures are joined.
func CreateDefaultData(ctx context.Context, cfg *config.Config, users UserStore, courses appServices.CourseService, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (admin account, courses)...")

	var finalErr error
	if err := createAdmin(ctx, cfg, users, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	if err := createCourses(ctx, courses, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}
	return finalErr
}

func createAdmin(ctx context.Context, cfg *config.Config, users UserStore, lgr zerolog.Logger) error {
	username := cfg.Seed.AdminUsername
	exists, err := users.UsernameExists(ctx, username)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking admin account")
		return err
	}
	if exists {
		lgr.Debug().Str("username", username).Msg("Admin account already exists")
		return nil
	}

	hashed, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	admin := &appModels.User{
		Username: username,
		Password: hashed,
		RoleType: appModels.RoleAdmin,
		IsActive: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin account")
		return err
	}

	lgr.Info().Str("username", username).Msg("Admin account created")
	return nil
}

func createCourses(ctx context.Context, courses appServices.CourseService, lgr zerolog.Logger) error {
	existing, err := courses.GetAllCourses(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error listing courses")
		return err
	}

	idByCode := make(map[string]int64, len(existing))
	for _, c := range existing {
		idByCode[c.Code] = c.ID
	}

	var finalErr error
	for _, def := range DefaultCourses {
		if _, ok := idByCode[def.Code]; ok {
			continue
		}

		var prerequisiteIDs []int64
		if def.Prerequisite != "" {
			prereqID, ok := idByCode[def.Prerequisite]
			if !ok {
				lgr.Warn().Str("code", def.Code).Str("prerequisite", def.Prerequisite).Msg("Prerequisite missing, skipping course")
				continue
			}
			prerequisiteIDs = []int64{prereqID}
		}

		course := &appModels.Course{Name: def.Name, Code: def.Code, Credits: def.Credits}
		err := courses.CreateCourse(ctx, course, prerequisiteIDs)
		if err != nil && !errors.Is(err, apperrors.ErrCourseCodeExists) {
			lgr.Error().Err(err).Str("code", def.Code).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if err == nil {
			idByCode[def.Code] = course.ID
			lgr.Info().Str("code", def.Code).Int64("id", course.ID).Msg("Default course created")
		}
	}
	return finalErr
}
