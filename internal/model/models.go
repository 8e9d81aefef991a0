// Package model defines shared data structures for the job board service.
package model

import (
	"fmt"
	"time"
)

// Source tags written into JobListing.Source by the provider adapters.
const (
	SourceAdzuna   = "adzuna"
	SourceRemoteOK = "remoteok"
)

// Fallback values applied by the adapters when a provider omits a field.
const (
	FallbackTitle       = "Unknown Position"
	FallbackCompany     = "Unknown Company"
	FallbackLocation    = "Remote"
	FallbackDescription = "No description available"
	FallbackURL         = "#"
)

// JobListing is a normalised live offer fetched from an external job board.
// Every field except Salary and Tags is always populated after adapter
// normalisation.
type JobListing struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Salary      *string  `json:"salary,omitempty"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	PostedDate  string   `json:"postedDate"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags,omitempty"`
}

// PostingStatus mirrors the status column of the jobs table.
//
// Valid lifecycle:
//
//	draft  ──► active | closed
//	active ──► closed | draft
//	closed ──► active (reopen)
type PostingStatus string

const (
	PostingActive PostingStatus = "active"
	PostingDraft  PostingStatus = "draft"
	PostingClosed PostingStatus = "closed"
)

// ParsePostingStatus converts a raw string to a PostingStatus, returning an
// error for unknown values.
func ParsePostingStatus(s string) (PostingStatus, error) {
	st := PostingStatus(s)
	switch st {
	case PostingActive, PostingDraft, PostingClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown posting status %q", s)
}

// IsVisible reports whether postings in this status appear on the public board.
func (s PostingStatus) IsVisible() bool { return s == PostingActive }

// postingTransitions lists every allowed (from → to) pair besides staying put.
var postingTransitions = map[PostingStatus][]PostingStatus{
	PostingDraft:  {PostingActive, PostingClosed},
	PostingActive: {PostingClosed, PostingDraft},
	PostingClosed: {PostingActive},
}

// CanTransition reports whether a posting may move from → to.
func CanTransition(from, to PostingStatus) bool {
	if from == to {
		return true
	}
	for _, s := range postingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Posting is a curated job stored in the jobs table and managed by admins.
type Posting struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Requirements    string        `json:"requirements"`
	SalaryMin       *int          `json:"salaryMin"`
	SalaryMax       *int          `json:"salaryMax"`
	Location        string        `json:"location"`
	JobType         string        `json:"jobType"`
	ExperienceLevel string        `json:"experienceLevel"`
	Category        string        `json:"category"`
	CompanyName     string        `json:"companyName"`
	Status          PostingStatus `json:"status"`
	PostedDate      time.Time     `json:"postedDate"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// PostingFilter narrows the public listing of curated postings.
// Zero values mean "no constraint".
type PostingFilter struct {
	Query            string
	Location         string
	Category         string
	SalaryMin        int
	JobTypes         []string
	ExperienceLevels []string
}

// LiveQuery is what the aggregator hands to every provider adapter.
// Limit caps the result count for providers that support it.
type LiveQuery struct {
	Term     string
	Location string
	Limit    int
}
