package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"jobtier-engine/internal/domain"
)

// Target identifies one employer board to fetch.
type Target struct {
	Token       string // board token / slug / workday board URL
	CompanyID   string
	CompanyName string
}

// Result is a successful fetch. Note is informational (e.g. a board that
// needs a browser session) and is never an error.
type Result struct {
	Jobs []domain.Job
	Note string
}

// Adapter fetches the open postings of one employer from one ATS.
// Implementations never panic on remote failures; they return a *SourceError.
type Adapter interface {
	Platform() domain.Platform
	Fetch(ctx context.Context, t Target) (Result, error)
}

type ErrorKind string

const (
	KindUnavailable ErrorKind = "source_unavailable"
	KindParse       ErrorKind = "parse_failure"
)

// SourceError is the error every adapter returns. Its message always names
// the platform plus either the HTTP status or the underlying cause.
type SourceError struct {
	Platform domain.Platform
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *SourceError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s API error: %d %s", e.Platform, e.Status, http.StatusText(e.Status))
	}
	if e.Kind == KindParse {
		return fmt.Sprintf("failed to parse %s response: %v", e.Platform, e.Err)
	}
	return fmt.Sprintf("failed to scrape %s: %v", e.Platform, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func Unavailable(p domain.Platform, err error) error {
	return &SourceError{Platform: p, Kind: KindUnavailable, Err: err}
}

func BadStatus(p domain.Platform, status int) error {
	return &SourceError{Platform: p, Kind: KindUnavailable, Status: status}
}

func ParseFailure(p domain.Platform, err error) error {
	return &SourceError{Platform: p, Kind: KindParse, Err: err}
}

// IsParseFailure reports whether err came from a malformed response body.
func IsParseFailure(err error) bool {
	var se *SourceError
	return errors.As(err, &se) && se.Kind == KindParse
}

// Registry dispatches by platform. custom has no adapter.
type Registry map[domain.Platform]Adapter

func NewRegistry(adapters ...Adapter) Registry {
	r := make(Registry, len(adapters))
	for _, a := range adapters {
		r[a.Platform()] = a
	}
	return r
}

func (r Registry) For(p domain.Platform) (Adapter, bool) {
	a, ok := r[p]
	return a, ok
}
