package doc2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported source format")
	ErrReadInput         = errors.New("failed to read input file")
	ErrWriteOutput       = errors.New("failed to write output file")

	// Chrome backend errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Cloud backend errors.
	ErrCloudCredentials = errors.New("cloud credentials not configured")
	ErrCloudAuth        = errors.New("cloud authentication failed")
	ErrCloudUpload      = errors.New("cloud asset upload failed")
	ErrCloudJob         = errors.New("cloud PDF job failed")
	ErrCloudDownload    = errors.New("cloud result download failed")

	// Backend selection and fallback errors.
	ErrUnknownBackend    = errors.New("unknown backend")
	ErrDuplicateBackend  = errors.New("duplicate backend")
	ErrNoBackends        = errors.New("no render backends configured")
	ErrAllBackendsFailed = errors.New("all render backends failed")

	// Post-render validation errors.
	ErrPDFInvalid = errors.New("rendered PDF failed validation")
)
