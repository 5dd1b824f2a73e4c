package service

import (
	"errors"

	"github.com/okian/metarisk/internal/domain/collect"
	"github.com/okian/metarisk/internal/domain/registry"
	"github.com/okian/metarisk/internal/domain/risk"
	"github.com/okian/metarisk/internal/domain/transform"
)

// Sentinel error kinds for this package.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoLoader   = errors.New("no artifact loader configured")
)

// Error kinds reported in logs, metrics and API responses.
const (
	KindModelNotFound    = "model_not_found"
	KindInvalidInput     = "invalid_input"
	KindMissingFeature   = "missing_feature"
	KindArtifactNotFound = "artifact_not_found"
	KindArtifactError    = "artifact_error"
	KindConfiguration    = "configuration"
	KindNotStarted       = "not_started"
	KindInternal         = "internal"
)

// ErrorKind classifies an error returned by Submit.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, registry.ErrModelNotFound):
		return KindModelNotFound
	case errors.Is(err, collect.ErrInvalidSelection), errors.Is(err, collect.ErrInvalidNumber):
		return KindInvalidInput
	case errors.Is(err, transform.ErrMissingFeature):
		return KindMissingFeature
	case errors.Is(err, risk.ErrArtifactNotFound):
		return KindArtifactNotFound
	case errors.Is(err, risk.ErrArtifactError):
		return KindArtifactError
	case errors.Is(err, registry.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrNotStarted):
		return KindNotStarted
	default:
		return KindInternal
	}
}
