package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/devconnector/internal/domain"
)

// ProfileService builds and mutates developer profiles.
type ProfileService struct {
	store  domain.DocumentStore
	repos  domain.RepoFetcher
	logger *slog.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store domain.DocumentStore, repos domain.RepoFetcher, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: store, repos: repos, logger: logger}
}

// ProfileInput is a sparse profile update. Empty strings mean "not given"
// and never overwrite a stored value.
type ProfileInput struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	// Skills is a comma separated list.
	Skills string

	YouTube  string
	Facebook string
	Twitter  string
	LinkedIn string
}

// ExperienceInput describes a new work history entry.
type ExperienceInput struct {
	Company     string    `validate:"required"`
	Title       string    `validate:"required"`
	Location    string
	From        time.Time `validate:"required"`
	To          *time.Time
	Current     bool
	Description string
}

// EducationInput describes a new education entry.
type EducationInput struct {
	School       string    `validate:"required"`
	Degree       string    `validate:"required"`
	FieldOfStudy string    `validate:"required"`
	From         time.Time `validate:"required"`
	To           *time.Time
	Current      bool
	Description  string
}

// ParseSkills splits a comma separated list, trimming each element.
// Elements that are empty after trimming are dropped.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// fields returns the store paths to set for every field present in in.
func (in ProfileInput) fields() map[string]any {
	f := map[string]any{}
	set := func(path, v string) {
		if v != "" {
			f[path] = v
		}
	}
	set("company", in.Company)
	set("website", in.Website)
	set("location", in.Location)
	set("bio", in.Bio)
	set("status", in.Status)
	set("githubusername", in.GitHubUsername)
	if in.Skills != "" {
		f["skills"] = ParseSkills(in.Skills)
	}
	set("social.youtube", in.YouTube)
	set("social.facebook", in.Facebook)
	set("social.twitter", in.Twitter)
	set("social.linkedin", in.LinkedIn)
	return f
}

func (in ProfileInput) social() *domain.Social {
	s := domain.Social{YouTube: in.YouTube, Facebook: in.Facebook, Twitter: in.Twitter, LinkedIn: in.LinkedIn}
	if s == (domain.Social{}) {
		return nil
	}
	return &s
}

// Upsert creates the actor's profile from in, or merges in into the
// existing one. Only fields present in in are written.
func (s *ProfileService) Upsert(ctx context.Context, actorID string, in ProfileInput) (*domain.Profile, error) {
	existing, err := s.findByUser(ctx, actorID)
	if err == nil {
		return s.merge(ctx, existing, in)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p := &domain.Profile{
		ID:             uuid.NewString(),
		User:           actorID,
		Company:        in.Company,
		Website:        in.Website,
		Location:       in.Location,
		Bio:            in.Bio,
		Status:         in.Status,
		GitHubUsername: in.GitHubUsername,
		Skills:         []string{},
		Social:         in.social(),
		Experience:     []domain.Experience{},
		Education:      []domain.Education{},
		Date:           time.Now().UTC(),
	}
	if in.Skills != "" {
		p.Skills = ParseSkills(in.Skills)
	}

	if err := s.store.Insert(ctx, domain.CollectionProfiles, p); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("insert profile: %w", err)
		}
		// Lost a race with a concurrent first upsert; merge into the winner.
		existing, err := s.findByUser(ctx, actorID)
		if err != nil {
			return nil, err
		}
		return s.merge(ctx, existing, in)
	}

	s.logger.Info("profile created", "user", actorID, "profile", p.ID)
	return s.populate(ctx, p), nil
}

func (s *ProfileService) merge(ctx context.Context, existing *domain.Profile, in ProfileInput) (*domain.Profile, error) {
	fields := in.fields()
	if len(fields) == 0 {
		return s.populate(ctx, existing), nil
	}

	var updated domain.Profile
	if err := s.store.UpdateFields(ctx, domain.CollectionProfiles, existing.ID, fields, &updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.populate(ctx, &updated), nil
}

// Me returns the actor's own profile.
func (s *ProfileService) Me(ctx context.Context, actorID string) (*domain.Profile, error) {
	return s.ByUser(ctx, actorID)
}

// ByUser returns the profile owned by userID.
func (s *ProfileService) ByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.findByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, p), nil
}

// List returns every profile with its owner populated.
func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	profiles := []domain.Profile{}
	if err := s.store.Find(ctx, domain.CollectionProfiles, nil, "", &profiles); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	for i := range profiles {
		s.populate(ctx, &profiles[i])
	}
	return profiles, nil
}

// DeleteAccount removes the actor's profile, if any, and then the user.
// The steps are not rolled back; a failure in the second is returned as is.
func (s *ProfileService) DeleteAccount(ctx context.Context, actorID string) error {
	p, err := s.findByUser(ctx, actorID)
	switch {
	case err == nil:
		if err := s.store.DeleteByID(ctx, domain.CollectionProfiles, p.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete profile: %w", err)
		}
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	if err := s.store.DeleteByID(ctx, domain.CollectionUsers, actorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: user", domain.ErrNotFound)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info("account deleted", "user", actorID)
	return nil
}

// AddExperience inserts a new entry at the front of the actor's experience.
func (s *ProfileService) AddExperience(ctx context.Context, actorID string, in ExperienceInput) (*domain.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	entry := domain.Experience{
		ID:          uuid.NewString(),
		Company:     in.Company,
		Title:       in.Title,
		Location:    in.Location,
		From:        in.From,
		To:          in.To,
		Current:     in.Current,
		Description: in.Description,
	}
	if entry.Current {
		entry.To = nil
	}
	return s.prepend(ctx, actorID, "experience", entry)
}

// AddEducation inserts a new entry at the front of the actor's education.
func (s *ProfileService) AddEducation(ctx context.Context, actorID string, in EducationInput) (*domain.Profile, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	entry := domain.Education{
		ID:           uuid.NewString(),
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         in.From,
		To:           in.To,
		Current:      in.Current,
		Description:  in.Description,
	}
	if entry.Current {
		entry.To = nil
	}
	return s.prepend(ctx, actorID, "education", entry)
}

// RemoveExperience deletes the experience entry with the given id.
func (s *ProfileService) RemoveExperience(ctx context.Context, actorID, entryID string) (*domain.Profile, error) {
	return s.remove(ctx, actorID, "experience", entryID)
}

// RemoveEducation deletes the education entry with the given id.
func (s *ProfileService) RemoveEducation(ctx context.Context, actorID, entryID string) (*domain.Profile, error) {
	return s.remove(ctx, actorID, "education", entryID)
}

func (s *ProfileService) prepend(ctx context.Context, actorID, path string, entry any) (*domain.Profile, error) {
	p, err := s.findByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var updated domain.Profile
	err = s.store.AppendToSubcollection(ctx, domain.CollectionProfiles, p.ID, path, entry,
		domain.AppendOptions{AtFront: true}, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("add %s: %w", path, err)
	}
	return s.populate(ctx, &updated), nil
}

func (s *ProfileService) remove(ctx context.Context, actorID, path, entryID string) (*domain.Profile, error) {
	p, err := s.findByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var updated domain.Profile
	err = s.store.RemoveFromSubcollection(ctx, domain.CollectionProfiles, p.ID, path,
		domain.Match{Field: "id", Value: entryID}, &updated)
	if err != nil {
		if errors.Is(err, domain.ErrElementNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s entry %s", domain.ErrNotFound, path, entryID)
		}
		return nil, fmt.Errorf("remove %s: %w", path, err)
	}
	return s.populate(ctx, &updated), nil
}

// PublicRepos lists the public repositories of a GitHub user. Any upstream
// failure is reported as ErrNotFound.
func (s *ProfileService) PublicRepos(ctx context.Context, username string) ([]domain.Repo, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	repos, err := s.repos.FetchPublicRepos(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			s.logger.Warn("github lookup failed", "username", username, "error", err)
			return nil, fmt.Errorf("%w: no github profile found", domain.ErrNotFound)
		}
		return nil, err
	}
	return repos, nil
}

func (s *ProfileService) findByUser(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	if err := s.store.FindOne(ctx, domain.CollectionProfiles, domain.Filter{"user": userID}, &p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// populate attaches the owner's public name and avatar. A missing or
// unreadable owner leaves Owner nil.
func (s *ProfileService) populate(ctx context.Context, p *domain.Profile) *domain.Profile {
	var u domain.User
	if err := s.store.FindByID(ctx, domain.CollectionUsers, p.User, &u); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("load profile owner", "user", p.User, "error", err)
		}
		return p
	}
	p.Owner = &domain.UserRef{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
	return p
}
