package domain

import "time"

// Profile is the developer profile owned by exactly one user.
type Profile struct {
	ID             string       `json:"id" bson:"_id"`
	User           string       `json:"user" bson:"user"`
	Company        string       `json:"company,omitempty" bson:"company,omitempty"`
	Website        string       `json:"website,omitempty" bson:"website,omitempty"`
	Location       string       `json:"location,omitempty" bson:"location,omitempty"`
	Bio            string       `json:"bio,omitempty" bson:"bio,omitempty"`
	Status         string       `json:"status,omitempty" bson:"status,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty" bson:"githubusername,omitempty"`
	Skills         []string     `json:"skills" bson:"skills"`
	Social         *Social      `json:"social,omitempty" bson:"social,omitempty"`
	Experience     []Experience `json:"experience" bson:"experience"`
	Education      []Education  `json:"education" bson:"education"`
	Date           time.Time    `json:"date" bson:"date"`

	// Owner is populated on read from the users collection and never stored.
	Owner *UserRef `json:"-" bson:"-"`
}

func (p *Profile) DocumentID() string { return p.ID }

// Social holds links keyed by a fixed set of platforms.
type Social struct {
	YouTube  string `json:"youtube,omitempty" bson:"youtube,omitempty"`
	Facebook string `json:"facebook,omitempty" bson:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty" bson:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
}

// Experience is a single work history entry. When Current is set, To is nil.
type Experience struct {
	ID          string     `json:"id" bson:"id"`
	Company     string     `json:"company" bson:"company"`
	Title       string     `json:"title" bson:"title"`
	Location    string     `json:"location,omitempty" bson:"location,omitempty"`
	From        time.Time  `json:"from" bson:"from"`
	To          *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current     bool       `json:"current" bson:"current"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// Education is a single schooling entry. When Current is set, To is nil.
type Education struct {
	ID           string     `json:"id" bson:"id"`
	School       string     `json:"school" bson:"school"`
	Degree       string     `json:"degree" bson:"degree"`
	FieldOfStudy string     `json:"fieldofstudy" bson:"fieldofstudy"`
	From         time.Time  `json:"from" bson:"from"`
	To           *time.Time `json:"to,omitempty" bson:"to,omitempty"`
	Current      bool       `json:"current" bson:"current"`
	Description  string     `json:"description,omitempty" bson:"description,omitempty"`
}

// UserRef is the public slice of a user shown alongside profiles.
type UserRef struct {
	ID     string
	Name   string
	Avatar string
}
