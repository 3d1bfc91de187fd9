// Package utils provides utility functions for the application.
package utils

import (
	"strconv"
)

type contextKey string

// Request-scoped context keys set by the HTTP handlers
const (
	RequestIDKey contextKey = "request_id"
	UserAgentKey contextKey = "user_agent"
	IPAddressKey contextKey = "ip_address"
	EndpointKey  contextKey = "endpoint"
	TimeoutKey   contextKey = "timeout"
)

func ToPtr[T any](v T) *T {
	return &v
}

// ParseUintParam parses a positive path/query id; zero means invalid.
func ParseUintParam(s string) uint {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}
