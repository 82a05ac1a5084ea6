package domain

import "errors"

// EmptyResumeWarning is the user-facing message shown when no resume text was supplied
const EmptyResumeWarning = "Please paste your resume."

var (
	// ErrEmptyResume is returned when the resume text is empty or whitespace-only
	ErrEmptyResume = errors.New("resume text is empty")

	// ErrRoleNotFound is returned when the requested role is not in the catalog
	ErrRoleNotFound = errors.New("role not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrReportNotFound is returned when a report has expired or never existed
	ErrReportNotFound = errors.New("report not found")

	// ErrUnsupportedDocument is returned when an uploaded resume has an unknown format
	ErrUnsupportedDocument = errors.New("unsupported document type")

	// ErrFetchDisabled is returned when a job URL is given but fetching is turned off
	ErrFetchDisabled = errors.New("job posting fetching is disabled")

	// ErrFetchFailure is returned when a job posting request fails
	ErrFetchFailure = errors.New("job posting request failed")

	// ErrPostingNotFound is returned when the job posting URL answers 404
	ErrPostingNotFound = errors.New("job posting not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
