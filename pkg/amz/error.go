package amz

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/beevik/etree"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrorDetail is an element of an error document not covered by the well known fields
type ErrorDetail struct {
	Name  string
	Value string
}

// ErrorPayload is the protocol level error a server returned in the body of a failed response.
// It implements awserr.RequestFailure so callers can handle it like any other AWS error
type ErrorPayload struct {
	code      string
	message   string
	requestID string

	Resource       string
	FurtherDetails string
	HostID         string
	Details        []ErrorDetail

	// HTTPStatusCode is the response code the document arrived with
	HTTPStatusCode int
}

var _ awserr.RequestFailure = (*ErrorPayload)(nil)

// NewErrorPayload creates a payload for a response that carried no parseable error document
func NewErrorPayload(code, message, requestID string, statusCode int) *ErrorPayload {
	return &ErrorPayload{code: code, message: message, requestID: requestID, HTTPStatusCode: statusCode}
}

func (e *ErrorPayload) Error() string {
	extra := fmt.Sprintf("status code: %d, request id: %s", e.HTTPStatusCode, e.requestID)
	return awserr.SprintError(e.code, e.message, extra, nil)
}

// Code returns the protocol error code, e.g. NoSuchBucket
func (e *ErrorPayload) Code() string { return e.code }

func (e *ErrorPayload) Message() string { return e.message }

func (e *ErrorPayload) OrigErr() error { return nil }

func (e *ErrorPayload) StatusCode() int { return e.HTTPStatusCode }

func (e *ErrorPayload) RequestID() string { return e.requestID }

func (e *ErrorPayload) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("code", e.code).
		Str("message", e.message).
		Str("resource", e.Resource).
		Str("request_id", e.requestID).
		Int("status", e.HTTPStatusCode)
}

// ParseErrorDocument decodes an <Error> document. A body that is not an error document yields an
// error and no payload
func ParseErrorDocument(body []byte, statusCode int) (*ErrorPayload, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(err, "failed to parse error document")
	}
	root := doc.SelectElement("Error")
	if root == nil {
		return nil, fmt.Errorf("document root is not <Error>")
	}

	ret := &ErrorPayload{HTTPStatusCode: statusCode}
	for _, el := range root.ChildElements() {
		text := el.Text()
		switch el.Tag {
		case "Code":
			ret.code = text
		case "Message":
			ret.message = text
		case "Resource":
			ret.Resource = text
		case "FurtherDetails":
			ret.FurtherDetails = text
		case "RequestId":
			ret.requestID = text
		case "HostId":
			ret.HostID = text
		default:
			ret.Details = append(ret.Details, ErrorDetail{Name: el.Tag, Value: text})
		}
	}
	return ret, nil
}
