package utils

import (
	"time"
)

// Token and request time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// RequestTimeout bounds every handler-initiated flow call
	RequestTimeout = 30 * time.Second

	// UploadURLTTL is how long a presigned upload URL stays valid
	UploadURLTTL = 15 * time.Minute
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Participation limits
const (
	MaxCommentLength    = 1000
	MaxReportLength     = 5000
	MaxAnswerTextLength = 2000
	MaxMediaURLLength   = 2048
	MaxReportMediaURLs  = 10
	DefaultAdsPageSize  = 20
	MaxAdsPageSize      = 100
	ConsoleRecentLimit  = 50
)
