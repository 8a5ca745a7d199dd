package domain

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierTop     Tier = "top"
	TierMiddle  Tier = "middle"
	TierLower   Tier = "lower"
	TierLowest  Tier = "lowest"
	TierBelow50 Tier = "below50"
)

// ScrapedTiers are the tiers that feed the scrape roster, highest first.
var ScrapedTiers = []Tier{TierTop, TierMiddle, TierLower, TierLowest}

func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierTop, TierMiddle, TierLower, TierLowest, TierBelow50:
		return t, nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Company is an employer aggregated from the filing dataset.
// Platform and the per-platform board tokens are filled in by curation
// after the tier builder runs; they are carried through untouched.
type Company struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	LCACount      int      `json:"lcaCount"`
	LCAQ1         int      `json:"lcaQ1"`
	LCAQ2         int      `json:"lcaQ2"`
	LCAQ3         int      `json:"lcaQ3"`
	LCAQ4         int      `json:"lcaQ4"`
	ApprovalRate  float64  `json:"approvalRate"`
	PriorityScore float64  `json:"priorityScore"`
	Tier          Tier     `json:"tier"`
	POCFirstName  string   `json:"pocFirstName,omitempty"`
	POCLastName   string   `json:"pocLastName,omitempty"`
	POCEmail      string   `json:"pocEmail,omitempty"`
	POCPhone      string   `json:"pocPhone,omitempty"`
	CareerURLs    []string `json:"careerUrls"`

	Platform     Platform `json:"platform,omitempty"`
	GreenhouseID *string  `json:"greenhouseId,omitempty"`
	LeverID      *string  `json:"leverId,omitempty"`
	AshbyID      *string  `json:"ashbyId,omitempty"`
	WorkdayID    *string  `json:"workdayId,omitempty"`
}

// BoardToken returns the token for the company's declared platform, or ""
// when the platform is custom/unset or the matching id is missing.
func (c Company) BoardToken() string {
	var p *string
	switch c.Platform {
	case PlatformGreenhouse:
		p = c.GreenhouseID
	case PlatformLever:
		p = c.LeverID
	case PlatformAshby:
		p = c.AshbyID
	case PlatformWorkday:
		p = c.WorkdayID
	}
	if p == nil {
		return ""
	}
	return *p
}

// TierData is one persisted tier document.
type TierData struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Count       int       `json:"count"`
	Tier        Tier      `json:"tier"`
	Companies   []Company `json:"companies"`
}

func NewTierData(t Tier, companies []Company, now time.Time) TierData {
	if companies == nil {
		companies = []Company{}
	}
	return TierData{GeneratedAt: now.UTC(), Count: len(companies), Tier: t, Companies: companies}
}

// CompaniesData is the combined, deduplicated view over all tiers.
type CompaniesData struct {
	GeneratedAt    time.Time    `json:"generatedAt"`
	TotalCompanies int          `json:"totalCompanies"`
	TierCounts     map[Tier]int `json:"tierCounts"`
	Companies      []Company    `json:"companies"`
}
