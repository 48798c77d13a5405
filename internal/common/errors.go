// Package common defines shared constants and sentinel errors used across
// the InstaShare backend. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Blob/database errors expected to self-resolve; eligible for retry.
	ErrorTransientStorage = errors.New("transient storage error")

	// Pipeline errors after retries are exhausted; route to the fail procedure.
	ErrorPermanentPipelineFailure = errors.New("permanent pipeline failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Download errors.
	ErrorNotDownloadable = errors.New("download not yet available for this file")
	ErrorArtifactMissing = errors.New("file is missing or file server is not available")
)
