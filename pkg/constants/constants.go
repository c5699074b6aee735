// Package constants provides shared constants used throughout the mutant codebase.
// This includes timeouts, limits, file permissions, and the default endpoints of
// the external services the client talks to.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for one-shot HTTP requests
	DefaultHTTPTimeout = 60 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the CLI and server
	ShutdownTimeout = 5 * time.Second

	// RetryWaitMin is the base backoff duration for retries
	RetryWaitMin = 250 * time.Millisecond

	// RetryWaitMax is the maximum backoff duration for retries
	RetryWaitMax = 8 * time.Second

	// ZoomDuration is the camera animation length of a residue zoom, in milliseconds
	ZoomDuration = 500
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the number of retries for idempotent upstream requests
	MaxRetries = 5

	// MaxConcurrentRequests is the maximum number of concurrent third-party lookups
	MaxConcurrentRequests = 4

	// ChannelBufferSize is the default buffer size for channels
	ChannelBufferSize = 256

	// MaxStreamFrameSize is the largest single stream frame accepted, in bytes
	MaxStreamFrameSize = 4 * 1024 * 1024
)

// Rate limiting constants
const (
	// DefaultRateLimit is requests per second sent to each third-party service
	DefaultRateLimit = 10

	// BurstSize is the token bucket burst size for rate limiting
	BurstSize = 5
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached lookups
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// Default service endpoints
const (
	// DefaultBackendURL is the analysis backend serving /process, /trim_pdb and /mutate
	DefaultBackendURL = "http://localhost:8000"

	// DefaultUniProtURL is the UniProt REST API
	DefaultUniProtURL = "https://rest.uniprot.org"

	// UniProtWebURL is the human-facing UniProt site
	UniProtWebURL = "https://www.uniprot.org"

	// DefaultRCSBURL is the RCSB file download host
	DefaultRCSBURL = "https://files.rcsb.org"

	// DefaultAlphaFoldURL is the AlphaFold database API host
	DefaultAlphaFoldURL = "https://alphafold.ebi.ac.uk"
)

// Format constants
const (
	// TimeFormatLog is the format used for diagnostics
	TimeFormatLog = "2006-01-02 15:04:05.000"

	// StructureFormat is the model format handed to viewers
	StructureFormat = "pdb"
)
