package postings

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"kaamkhoj/jobboard/internal/model"
)

// Defaults applied to optional fields on save.
const (
	DefaultJobType         = "Full-time"
	DefaultExperienceLevel = "Entry"
	DefaultCategory        = "Programming/Development"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// SaveRequest is the body of POST /api/jobs and PUT /api/jobs/{id}.
type SaveRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description" validate:"required"`
	Requirements    string `json:"requirements"`
	SalaryMin       *int   `json:"salaryMin" validate:"omitempty,gte=0"`
	SalaryMax       *int   `json:"salaryMax" validate:"omitempty,gte=0"`
	Location        string `json:"location" validate:"required"`
	JobType         string `json:"jobType"`
	ExperienceLevel string `json:"experienceLevel"`
	Category        string `json:"category"`
	CompanyName     string `json:"companyName" validate:"required"`
	Status          string `json:"status" validate:"omitempty,oneof=active draft closed"`
}

// Validate checks required fields and value ranges.
func (r *SaveRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	return validate.Struct(r)
}

// ToPosting maps the request onto a Posting with defaults filled in.
func (r *SaveRequest) ToPosting(id string) model.Posting {
	p := model.Posting{
		ID:              id,
		Title:           r.Title,
		Description:     r.Description,
		Requirements:    r.Requirements,
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		Location:        r.Location,
		JobType:         orDefault(r.JobType, DefaultJobType),
		ExperienceLevel: orDefault(r.ExperienceLevel, DefaultExperienceLevel),
		Category:        orDefault(r.Category, DefaultCategory),
		CompanyName:     r.CompanyName,
		Status:          model.PostingActive,
	}
	if st, err := model.ParsePostingStatus(r.Status); err == nil {
		p.Status = st
	}
	return p
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
