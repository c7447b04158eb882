// Package models defines the records exchanged with the ExpertConnect API.
// Field tags follow the backend serializers.
package models

import (
	"strings"
	"time"
)

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

type User struct {
	ID             int            `json:"id"`
	Username       string         `json:"username"`
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ProfilePicture string         `json:"profile_picture"`
	Bio            string         `json:"bio"`
	Headline       string         `json:"headline"`
	IsVerified     bool           `json:"is_verified"`
	IsAdmin        bool           `json:"is_admin"`
	IsActive       bool           `json:"is_active,omitempty"`
	DateJoined     time.Time      `json:"date_joined"`
	Skills         []Skill        `json:"skills,omitempty"`
	Availability   []Availability `json:"availability,omitempty"`
	CreditBalance  int            `json:"credit_balance"`
}

// FullName joins first and last name, falling back to the username.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// IsExpert reports whether the user offers any skill, i.e. acts as a provider.
func (u User) IsExpert() bool {
	return len(u.Skills) > 0
}

type Skill struct {
	ID              int        `json:"id"`
	SkillName       string     `json:"skill_name"`
	SkillLevel      SkillLevel `json:"skill_level"`
	YearsExperience int        `json:"years_experience"`
}

type Availability struct {
	ID          int    `json:"id"`
	DayOfWeek   int    `json:"day_of_week"`
	DayName     string `json:"day_name"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Credentials are exchanged for a token pair at /auth/jwt/create/.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProvider Role = "provider"
	RoleBoth     Role = "both"
)

// RegisterRequest is the account creation payload. Provider fields are only
// required for the provider and both roles; see the validation package for
// the struct-level rule.
type RegisterRequest struct {
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Password   string `json:"password" validate:"required,min=8,password"`
	RePassword string `json:"re_password" validate:"required,eqfield=Password"`
	Role       Role   `json:"role" validate:"required,oneof=consumer provider both"`

	Headline         string `json:"headline,omitempty" validate:"max=100"`
	Bio              string `json:"bio,omitempty"`
	HourlyRate       int    `json:"hourly_rate,omitempty"`
	AvailableForHire bool   `json:"is_available_for_hire,omitempty"`
}

// NeedsProviderProfile reports whether the role offers consultations.
func (r RegisterRequest) NeedsProviderProfile() bool {
	return r.Role == RoleProvider || r.Role == RoleBoth
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	Headline       *string `json:"headline,omitempty" validate:"omitempty,max=100"`
}

// Empty reports whether the update carries no fields.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.ProfilePicture == nil && p.Bio == nil && p.Headline == nil
}

type SkillRequest struct {
	SkillName       string     `json:"skill_name" validate:"required,max=100"`
	SkillLevel      SkillLevel `json:"skill_level" validate:"required,oneof=beginner intermediate advanced expert"`
	YearsExperience int        `json:"years_experience" validate:"min=0,max=80"`
}

type AvailabilityRequest struct {
	DayOfWeek   int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	IsAvailable bool   `json:"is_available"`
}

type UserQuery struct {
	Skill string
}
