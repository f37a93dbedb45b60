package api

import (
	"encoding/json"
	"time"
)

// Company is a backend company row. (Platform, Slug) is unique server side;
// ID is assigned by the backend.
type Company struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Platform        string     `json:"platform"`
	Slug            string     `json:"slug"`
	CareerURL       string     `json:"career_url,omitempty"`
	Enabled         bool       `json:"enabled"`
	SponsorsH1B     bool       `json:"sponsors_h1b"`
	H1BApprovalRate *float64   `json:"h1b_approval_rate,omitempty"`
	H1BTotalFiled   *int       `json:"h1b_total_filed,omitempty"`
	InCart          bool       `json:"in_cart"`
	CartAddedAt     *time.Time `json:"cart_added_at,omitempty"`
}

// NewCompany is the create payload.
type NewCompany struct {
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Slug     string `json:"slug"`
}

type Job struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	CompanyName     string     `json:"company_name"`
	Title           string     `json:"title"`
	Location        *string    `json:"location"`
	URL             string     `json:"url"`
	Description     *string    `json:"description"`
	Remote          bool       `json:"remote"`
	MatchScore      *float64   `json:"match_score"`
	MatchReason     *string    `json:"match_reason"`
	Status          string     `json:"status"`
	ExperienceLevel *string    `json:"experience_level"`
	VisaSentiment   *string    `json:"visa_sentiment"`
	IsNewGrad       bool       `json:"is_new_grad"`
	PostedAt        *time.Time `json:"posted_at"`
}

// ScanResult is the reply of POST /jobcart/scan. An empty cart answers with
// only a status, which decodes to NewJobs == 0.
type ScanResult struct {
	Status    string `json:"status"`
	NewJobs   int    `json:"new_jobs"`
	Companies int    `json:"companies"`
}

// Profile mirrors the backend's untagged profile struct.
type Profile struct {
	ID                 int
	Name               string
	Email              string
	Skills             string
	ExperienceYears    int
	PreferredRoles     string
	PreferredLocations string
	MinMatchScore      float64
	VisaRequired       bool
	ExperienceLevel    *string
}

// Stats is passed through untouched; the agent only uses the call as a
// liveness probe.
type Stats = json.RawMessage

type Sponsor struct {
	CompanyName  string   `json:"company_name"`
	SponsorsH1B  bool     `json:"sponsors_h1b"`
	ApprovalRate *float64 `json:"approval_rate,omitempty"`
	TotalFiled   *int     `json:"total_filed,omitempty"`
}

type H1BStatus struct {
	TotalSponsors int `json:"total_sponsors_in_db"`
}
