package amz

import (
	"strings"

	errors2 "github.com/assetnote/kites3/pkg/errors"
)

// CannedACL selects one of the fixed access control policies S3 can apply to a new bucket or object
type CannedACL int

const (
	CannedACLNone CannedACL = iota
	CannedACLPublicRead
	CannedACLPublicReadWrite
	CannedACLAuthenticatedRead
)

// String returns the protocol value of the x-amz-acl header, or "" for CannedACLNone.
// Values outside the enumeration map to authenticated-read, the most restrictive of the policies
func (c CannedACL) String() string {
	switch c {
	case CannedACLNone:
		return ""
	case CannedACLPublicRead:
		return "public-read"
	case CannedACLPublicReadWrite:
		return "public-read-write"
	default:
		return "authenticated-read"
	}
}

// ParseCannedACL converts a protocol value into a CannedACL. "" and "none" yield CannedACLNone
func ParseCannedACL(s string) (CannedACL, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "private":
		return CannedACLNone, nil
	case "public-read":
		return CannedACLPublicRead, nil
	case "public-read-write":
		return CannedACLPublicReadWrite, nil
	case "authenticated-read":
		return CannedACLAuthenticatedRead, nil
	}
	return CannedACLNone, errors2.New(errors2.StatusBadCannedACL, "parse canned acl", nil)
}
