package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/devconnector/internal/domain"
	"github.com/msomdec/devconnector/internal/service"
)

// UserDTO is the JSON representation of a user. The password hash is never
// included.
type UserDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Date   string `json:"date"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Date:   u.Date.Format(time.RFC3339),
	}
}

// OwnerDTO is the public part of a profile's owner.
type OwnerDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// ProfileDTO is the JSON representation of a profile. The user field is
// expanded to the owner's name and avatar.
type ProfileDTO struct {
	domain.Profile
	User OwnerDTO `json:"user"`
}

func toProfileDTO(p *domain.Profile) ProfileDTO {
	dto := ProfileDTO{Profile: *p, User: OwnerDTO{ID: p.User}}
	if p.Owner != nil {
		dto.User.Name = p.Owner.Name
		dto.User.Avatar = p.Owner.Avatar
	}
	return dto
}

func toProfileDTOs(profiles []domain.Profile) []ProfileDTO {
	dtos := make([]ProfileDTO, len(profiles))
	for i := range profiles {
		dtos[i] = toProfileDTO(&profiles[i])
	}
	return dtos
}

type tokenResponse struct {
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"`
	YouTube        string `json:"youtube"`
	Facebook       string `json:"facebook"`
	Twitter        string `json:"twitter"`
	LinkedIn       string `json:"linkedin"`
}

// toInput requires status and skills, which the profile form always sends.
func (req profileRequest) toInput() (service.ProfileInput, error) {
	var missing []string
	if strings.TrimSpace(req.Status) == "" {
		missing = append(missing, "status is required")
	}
	if strings.TrimSpace(req.Skills) == "" {
		missing = append(missing, "skills is required")
	}
	if len(missing) > 0 {
		return service.ProfileInput{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(missing, "; "))
	}
	return service.ProfileInput{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Bio:            req.Bio,
		Status:         req.Status,
		GitHubUsername: req.GitHubUsername,
		Skills:         req.Skills,
		YouTube:        req.YouTube,
		Facebook:       req.Facebook,
		Twitter:        req.Twitter,
		LinkedIn:       req.LinkedIn,
	}, nil
}

type experienceRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

func (req experienceRequest) toInput() (service.ExperienceInput, error) {
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return service.ExperienceInput{}, err
	}
	return service.ExperienceInput{
		Company:     req.Company,
		Title:       req.Title,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	}, nil
}

type educationRequest struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (req educationRequest) toInput() (service.EducationInput, error) {
	from, to, err := parseRange(req.From, req.To)
	if err != nil {
		return service.EducationInput{}, err
	}
	return service.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	}, nil
}

type textRequest struct {
	Text string `json:"text"`
}

var dateLayouts = []string{time.DateOnly, time.RFC3339}

// parseRange parses the from and to dates of a history entry. An empty from
// yields the zero time, which validation rejects; an empty to yields nil.
func parseRange(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	var from time.Time
	if fromRaw != "" {
		t, err := parseDate("from", fromRaw)
		if err != nil {
			return time.Time{}, nil, err
		}
		from = t
	}
	if toRaw == "" {
		return from, nil, nil
	}
	to, err := parseDate("to", toRaw)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, &to, nil
}

func parseDate(field, raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", domain.ErrInvalidInput, field)
}
