package s3

import (
	"fmt"
	"net"

	"github.com/assetnote/kites3/pkg/engine"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/aws/aws-sdk-go/aws/awserr"
)

const (
	// CodeInvalidBucketName is the awserr code of bucket name validation failures
	CodeInvalidBucketName = "InvalidBucketName"

	minBucketName = 3
	// maxBucketNameVirtualHost keeps the name a valid DNS label sequence
	maxBucketNameVirtualHost = 63
	maxBucketNamePath        = 255
)

// ValidateBucketName checks name against the naming rules of the URI style. Virtual host style
// names must be DNS compatible: lowercase alphanumerics, dots and dashes, starting and ending with
// an alphanumeric, no empty labels and not an IP address. Path style names additionally allow
// uppercase letters and underscores and may be longer
func ValidateBucketName(name string, style engine.URIStyle) error {
	if err := validateBucketName(name, style); err != nil {
		return errors2.New(errors2.StatusInvalidBucketName, "validate bucket name",
			awserr.New(CodeInvalidBucketName, fmt.Sprintf("invalid bucket name %q", name), err))
	}
	return nil
}

func validateBucketName(name string, style engine.URIStyle) error {
	max := maxBucketNameVirtualHost
	if style == engine.URIStylePath {
		max = maxBucketNamePath
	}
	if len(name) < minBucketName || len(name) > max {
		return fmt.Errorf("length must be between %d and %d", minBucketName, max)
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '.' || c == '-':
			// "..", ".-" and "-." leave a label empty or ending in a dash
			if style == engine.URIStyleVirtualHost && i > 0 && (c == '.' || name[i-1] == '.') &&
				(name[i-1] == '.' || name[i-1] == '-') {
				return fmt.Errorf("invalid label at offset %d", i)
			}
		case (c >= 'A' && c <= 'Z') || c == '_':
			if style != engine.URIStylePath {
				return fmt.Errorf("character %q is not allowed in a virtual host bucket name", c)
			}
		default:
			return fmt.Errorf("character %q is not allowed", c)
		}
	}

	if style == engine.URIStyleVirtualHost {
		if !isAlnum(name[0]) || !isAlnum(name[len(name)-1]) {
			return fmt.Errorf("must start and end with a letter or digit")
		}
		if net.ParseIP(name) != nil {
			return fmt.Errorf("must not be an IP address")
		}
	}
	return nil
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
