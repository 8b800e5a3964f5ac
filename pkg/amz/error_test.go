package amz

import (
	"testing"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noSuchBucket = `<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>NoSuchBucket</Code>
  <Message>The specified bucket does not exist</Message>
  <BucketName>missing</BucketName>
  <Resource>/missing</Resource>
  <RequestId>4442587FB7D0A2F9</RequestId>
  <HostId>abcdef</HostId>
</Error>`

func TestParseErrorDocument(t *testing.T) {
	p, err := ParseErrorDocument([]byte(noSuchBucket), 404)
	require.NoError(t, err)

	assert.Equal(t, "NoSuchBucket", p.Code())
	assert.Equal(t, "The specified bucket does not exist", p.Message())
	assert.Equal(t, "/missing", p.Resource)
	assert.Equal(t, "4442587FB7D0A2F9", p.RequestID())
	assert.Equal(t, "abcdef", p.HostID)
	assert.Equal(t, 404, p.StatusCode())
	assert.Equal(t, []ErrorDetail{{Name: "BucketName", Value: "missing"}}, p.Details)
	assert.Contains(t, p.Error(), "NoSuchBucket: The specified bucket does not exist")

	var rf awserr.RequestFailure = p
	assert.Equal(t, "4442587FB7D0A2F9", rf.RequestID())
}

func TestParseErrorDocumentRejects(t *testing.T) {
	_, err := ParseErrorDocument([]byte("<html><body>bad gateway</body></html>"), 502)
	assert.Error(t, err)

	_, err = ParseErrorDocument([]byte("not xml <"), 500)
	assert.Error(t, err)
}
