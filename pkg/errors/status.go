package errors

// Status is the outcome reported for a request, either synchronously when the request could not be
// started or through the completion callback once an exchange has finished.
type Status int

const (
	StatusOK Status = iota
	StatusInternalError
	// StatusFailedToCreateRequest indicates a descriptor or transport handle could not be allocated
	StatusFailedToCreateRequest
	// StatusFailedToInitializeRequest indicates a pooled transport handle could not be reset for reuse
	StatusFailedToInitializeRequest
	StatusMetaHeadersTooLong
	StatusBadMetaHeader
	StatusBadCannedACL
	StatusInvalidBucketName
	// StatusFailedToRegister indicates the multiplexer refused the descriptor
	StatusFailedToRegister
	StatusInterrupted
	StatusTimedOut
	StatusConnectionFailed
	StatusTooManyRedirects
	// StatusHTTPError indicates the exchange completed with a non 2xx response code
	StatusHTTPError
	StatusFailure
)

var statusNames = [...]string{
	StatusOK:                        "OK",
	StatusInternalError:             "InternalError",
	StatusFailedToCreateRequest:     "FailedToCreateRequest",
	StatusFailedToInitializeRequest: "FailedToInitializeRequest",
	StatusMetaHeadersTooLong:        "MetaHeadersTooLong",
	StatusBadMetaHeader:             "BadMetaHeader",
	StatusBadCannedACL:              "BadCannedACL",
	StatusInvalidBucketName:         "InvalidBucketName",
	StatusFailedToRegister:          "FailedToRegister",
	StatusInterrupted:               "Interrupted",
	StatusTimedOut:                  "TimedOut",
	StatusConnectionFailed:          "ConnectionFailed",
	StatusTooManyRedirects:          "TooManyRedirects",
	StatusHTTPError:                 "HTTPError",
	StatusFailure:                   "Failure",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "Unknown"
	}
	return statusNames[s]
}

// Retryable reports whether a request finishing with this status may succeed if issued again.
// The engine never retries on its own, this is a hint for callers.
func (s Status) Retryable() bool {
	switch s {
	case StatusTimedOut, StatusConnectionFailed, StatusInterrupted:
		return true
	}
	return false
}

// Kind groups statuses by where they are discovered and how they are reported
type Kind int

const (
	KindNone Kind = iota
	// KindResource errors are returned synchronously when a descriptor or handle cannot be produced
	KindResource
	// KindValidation errors are returned synchronously before any network I/O
	KindValidation
	// KindRegistration errors are returned synchronously when a multiplexer refuses a descriptor
	KindRegistration
	// KindExchange errors are only ever delivered through the completion callback
	KindExchange
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindValidation:
		return "validation"
	case KindRegistration:
		return "registration"
	case KindExchange:
		return "exchange"
	}
	return "none"
}

// KindOfStatus returns the kind a status belongs to
func KindOfStatus(s Status) Kind {
	switch s {
	case StatusOK:
		return KindNone
	case StatusFailedToCreateRequest, StatusFailedToInitializeRequest, StatusInternalError:
		return KindResource
	case StatusMetaHeadersTooLong, StatusBadMetaHeader, StatusBadCannedACL, StatusInvalidBucketName:
		return KindValidation
	case StatusFailedToRegister:
		return KindRegistration
	}
	return KindExchange
}
