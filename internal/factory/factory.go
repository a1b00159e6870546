package factory

import (
	"fmt"
	"strings"

	apperrors "go-tree-inspector/internal/errors"
	"go-tree-inspector/internal/storage"
	"go-tree-inspector/internal/strategy"
	"go-tree-inspector/pkg/validation"
)

// SourceType names where a photo comes from
type SourceType string

const (
	// UploadSource wraps bytes already in memory
	UploadSource SourceType = "upload"
	// URLSource downloads the photo over HTTP
	URLSource SourceType = "url"
	// AzureSource reads a container/blob reference
	AzureSource SourceType = "azure"
	// FileSource reads a local path
	FileSource SourceType = "file"
	// CameraSource grabs a frame from a local device
	CameraSource SourceType = "camera"
)

// FormulaType names a height formula
type FormulaType string

const (
	LegacyFormula  FormulaType = "legacy"
	TangentFormula FormulaType = "tangent"
)

// SourceRequest describes one photo to acquire. Ref is a URL, a blob
// reference or a path depending on Type; Data is used for uploads.
type SourceRequest struct {
	Type SourceType
	Ref  string
	Name string
	Data []byte
}

// SourceFactory creates image sources
type SourceFactory interface {
	CreateSource(req SourceRequest) (storage.ImageSource, error)
}

// StrategyFactory creates height strategies
type StrategyFactory interface {
	CreateHeightStrategy(formula FormulaType) (strategy.HeightStrategy, error)
}

// SourceDeps carries the backends a source factory draws from. Nil
// backends make the matching source type unavailable.
type SourceDeps struct {
	Fetcher      *storage.HTTPImageFetcher
	Blobs        *storage.AzureBlobStore
	CameraDevice int
	MaxFileSize  int64
}

// sourceFactory implements SourceFactory
type sourceFactory struct {
	deps SourceDeps
	urls *validation.URLValidator
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(deps SourceDeps) SourceFactory {
	return &sourceFactory{deps: deps, urls: validation.NewURLValidator()}
}

// CreateSource creates an image source based on the requested type
func (f *sourceFactory) CreateSource(req SourceRequest) (storage.ImageSource, error) {
	switch SourceType(strings.ToLower(string(req.Type))) {
	case UploadSource:
		return storage.NewBytesSource(req.Name, req.Data), nil
	case URLSource:
		if f.deps.Fetcher == nil {
			return nil, apperrors.NewUnavailableError("URL source is not configured", nil)
		}
		if strings.TrimSpace(req.Ref) == "" {
			return nil, apperrors.NewValidationError("image URL is required", nil)
		}
		if err := f.urls.ValidateURL(req.Ref); err != nil {
			return nil, err
		}
		return storage.NewURLSource(f.deps.Fetcher, req.Ref), nil
	case AzureSource:
		if f.deps.Blobs == nil {
			return nil, apperrors.NewUnavailableError("Azure storage is not configured", nil)
		}
		return storage.NewBlobSource(f.deps.Blobs, req.Ref)
	case FileSource:
		if strings.TrimSpace(req.Ref) == "" {
			return nil, apperrors.NewValidationError("file path is required", nil)
		}
		return storage.NewFileSource(req.Ref, f.deps.MaxFileSize), nil
	case CameraSource:
		if !storage.CameraAvailable() {
			return nil, apperrors.NewUnavailableError("camera support not built in (build with -tags gocv)", nil)
		}
		return storage.NewCameraSource(f.deps.CameraDevice), nil
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported source type: %s", req.Type), nil)
	}
}

// strategyFactory implements StrategyFactory
type strategyFactory struct{}

// NewStrategyFactory creates a new strategy factory
func NewStrategyFactory() StrategyFactory {
	return &strategyFactory{}
}

// CreateHeightStrategy creates a strategy for the named formula
func (f *strategyFactory) CreateHeightStrategy(formula FormulaType) (strategy.HeightStrategy, error) {
	switch FormulaType(strings.ToLower(string(formula))) {
	case LegacyFormula, "":
		return strategy.NewLegacyHeightStrategy(), nil
	case TangentFormula:
		return strategy.NewTangentHeightStrategy(), nil
	default:
		return nil, fmt.Errorf("unsupported height formula: %s", formula)
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	SourceFactory   SourceFactory
	StrategyFactory StrategyFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(deps SourceDeps) *ComponentFactory {
	return &ComponentFactory{
		SourceFactory:   NewSourceFactory(deps),
		StrategyFactory: NewStrategyFactory(),
	}
}
