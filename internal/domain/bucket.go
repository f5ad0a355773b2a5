package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Bucket is the lifecycle partition a position belongs to, as classified by
// the backend.
type Bucket string

// Bucket constants
const (
	BucketActive  Bucket = "active"
	BucketExpired Bucket = "expired"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{BucketActive, BucketExpired}

// ParseBucket accepts the canonical names plus the backend's legacy
// "inactive" alias for expired.
func ParseBucket(s string) (Bucket, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return BucketActive, nil
	case "expired", "inactive":
		return BucketExpired, nil
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}

// Gateway errors. Callers match them with errors.Is.
var (
	ErrFetchPositions = errors.New("failed to fetch positions")
	ErrAddPosition    = errors.New("failed to add position")
	ErrDeletePosition = errors.New("failed to delete position")
)

// ErrViewStateNotFound is returned when a session has no stored view state.
var ErrViewStateNotFound = errors.New("view state not found")

// ErrUnknownTable is returned for a table id that is not configured.
var ErrUnknownTable = errors.New("unknown table")
