package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
)

// DirectoryService reads experts and categories and manages the current
// user's skills and availability. It keeps no state.
type DirectoryService interface {
	Experts(ctx context.Context, q models.UserQuery) ([]models.User, error)
	User(ctx context.Context, id int) (models.User, error)
	Categories(ctx context.Context) ([]models.Category, error)

	AddSkill(ctx context.Context, req models.SkillRequest) (models.Skill, error)
	UpdateSkill(ctx context.Context, id int, req models.SkillRequest) (models.Skill, error)
	DeleteSkill(ctx context.Context, id int) error

	Availability(ctx context.Context, userID int) ([]models.Availability, error)
	AddAvailability(ctx context.Context, req models.AvailabilityRequest) (models.Availability, error)
	UpdateAvailability(ctx context.Context, id int, req models.AvailabilityRequest) (models.Availability, error)
	DeleteAvailability(ctx context.Context, id int) error
}

type directoryService struct {
	users      client.UserAPI
	categories client.CategoryAPI
}

func NewDirectoryService(users client.UserAPI, categories client.CategoryAPI) DirectoryService {
	return &directoryService{users: users, categories: categories}
}

func (d *directoryService) Experts(ctx context.Context, q models.UserQuery) ([]models.User, error) {
	users, err := d.users.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list experts error: %w", err)
	}
	return users, nil
}

func (d *directoryService) User(ctx context.Context, id int) (models.User, error) {
	u, err := d.users.Get(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("get user %d error: %w", id, err)
	}
	return u, nil
}

func (d *directoryService) Categories(ctx context.Context) ([]models.Category, error) {
	cats, err := d.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories error: %w", err)
	}
	return cats, nil
}

func (d *directoryService) AddSkill(ctx context.Context, req models.SkillRequest) (models.Skill, error) {
	if err := validation.Struct(req); err != nil {
		return models.Skill{}, err
	}
	s, err := d.users.AddSkill(ctx, req)
	if err != nil {
		return models.Skill{}, fmt.Errorf("add skill error: %w", err)
	}
	return s, nil
}

func (d *directoryService) UpdateSkill(ctx context.Context, id int, req models.SkillRequest) (models.Skill, error) {
	if err := validation.Struct(req); err != nil {
		return models.Skill{}, err
	}
	s, err := d.users.UpdateSkill(ctx, id, req)
	if err != nil {
		return models.Skill{}, fmt.Errorf("update skill %d error: %w", id, err)
	}
	return s, nil
}

func (d *directoryService) DeleteSkill(ctx context.Context, id int) error {
	if err := d.users.DeleteSkill(ctx, id); err != nil {
		return fmt.Errorf("delete skill %d error: %w", id, err)
	}
	return nil
}

func (d *directoryService) Availability(ctx context.Context, userID int) ([]models.Availability, error) {
	slots, err := d.users.Availability(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list availability error: %w", err)
	}
	return slots, nil
}

func (d *directoryService) AddAvailability(ctx context.Context, req models.AvailabilityRequest) (models.Availability, error) {
	if err := validation.Struct(req); err != nil {
		return models.Availability{}, err
	}
	a, err := d.users.AddAvailability(ctx, req)
	if err != nil {
		return models.Availability{}, fmt.Errorf("add availability error: %w", err)
	}
	return a, nil
}

func (d *directoryService) UpdateAvailability(ctx context.Context, id int, req models.AvailabilityRequest) (models.Availability, error) {
	if err := validation.Struct(req); err != nil {
		return models.Availability{}, err
	}
	a, err := d.users.UpdateAvailability(ctx, id, req)
	if err != nil {
		return models.Availability{}, fmt.Errorf("update availability %d error: %w", id, err)
	}
	return a, nil
}

func (d *directoryService) DeleteAvailability(ctx context.Context, id int) error {
	if err := d.users.DeleteAvailability(ctx, id); err != nil {
		return fmt.Errorf("delete availability %d error: %w", id, err)
	}
	return nil
}
