package amz

import (
	"errors"
	"strings"
	"testing"
	"time"

	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/davecgh/go-spew/spew"
	"github.com/lucasjones/reggen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2008, time.July, 2, 15, 4, 5, 0, time.UTC)

func TestComposeHeadersOrder(t *testing.T) {
	var c CanonicalHeaders
	err := ComposeHeaders(&c, &RequestHeaders{
		CannedACL: CannedACLPublicRead,
		MetaHeaders: []string{
			"x-amz-meta-Author:   Bryan  ",
			"X-AMZ-META-Color: blue",
		},
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"x-amz-acl: public-read",
		"x-amz-date: Wed, 02 Jul 2008 15:04:05 GMT",
		"x-amz-meta-author: Bryan",
		"x-amz-meta-color: blue",
	}, c.Strings(), spew.Sdump(c))
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, strings.Join(c.Strings(), "\n")+"\n", c.String())

	name, value := c.Header(2)
	assert.Equal(t, "x-amz-meta-author", string(name))
	assert.Equal(t, "Bryan", string(value))
}

func TestComposeHeadersNil(t *testing.T) {
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, nil, testNow))
	assert.Equal(t, []string{"x-amz-date: Wed, 02 Jul 2008 15:04:05 GMT"}, c.Strings())
}

func TestComposeHeadersNoACL(t *testing.T) {
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, &RequestHeaders{}, testNow))
	assert.Equal(t, 1, c.Len())
	name, _ := c.Header(0)
	assert.Equal(t, HeaderDate, string(name))
}

func TestComposeHeadersDeterministic(t *testing.T) {
	rh := &RequestHeaders{
		CannedACL:   CannedACLAuthenticatedRead,
		MetaHeaders: []string{"x-amz-meta-a: 1", "x-amz-meta-B: 2"},
	}
	var a, b CanonicalHeaders
	require.NoError(t, ComposeHeaders(&a, rh, testNow))
	require.NoError(t, ComposeHeaders(&b, rh, testNow))
	assert.Equal(t, a.Bytes(), b.Bytes())

	// only the date line differs across timestamps
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, rh, testNow.Add(time.Hour)))
	for i := 0; i < a.Len(); i++ {
		name, _ := a.Header(i)
		if string(name) == HeaderDate {
			assert.NotEqual(t, a.Line(i), c.Line(i))
			continue
		}
		assert.Equal(t, a.Line(i), c.Line(i))
	}
}

func TestComposeHeadersReusesBuffer(t *testing.T) {
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{"x-amz-meta-a: 1", "x-amz-meta-b: 2"}}, testNow))
	require.NoError(t, ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{"x-amz-meta-c: 3"}}, testNow))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "x-amz-meta-c: 3", string(c.Line(1)))
}

func TestComposeHeadersRejects(t *testing.T) {
	tooMany := make([]string, MaxMetaHeaderCount+1)
	for i := range tooMany {
		tooMany[i] = "x-amz-meta-a:b"
	}
	tooBig := []string{"x-amz-meta-big: " + strings.Repeat("v", MaxMetaHeaderSize)}

	tests := []struct {
		name   string
		meta   []string
		status errors2.Status
	}{
		{"too many", tooMany, errors2.StatusMetaHeadersTooLong},
		{"too big", tooBig, errors2.StatusMetaHeadersTooLong},
		{"missing prefix", []string{"x-amz-foo: bar"}, errors2.StatusBadMetaHeader},
		{"wrong header", []string{"Content-Type: text/plain"}, errors2.StatusBadMetaHeader},
		{"underscore in name", []string{"x-amz-meta-foo_bar: v"}, errors2.StatusBadMetaHeader},
		{"dash in name", []string{"x-amz-meta-foo-bar: v"}, errors2.StatusBadMetaHeader},
		{"space before colon", []string{"x-amz-meta-foo : v"}, errors2.StatusBadMetaHeader},
		{"no colon", []string{"x-amz-meta-foo"}, errors2.StatusBadMetaHeader},
		{"empty name", []string{"x-amz-meta-: v"}, errors2.StatusBadMetaHeader},
		{"empty value", []string{"x-amz-meta-foo:"}, errors2.StatusBadMetaHeader},
		{"blank value", []string{"x-amz-meta-foo: \t "}, errors2.StatusBadMetaHeader},
		{"second header bad", []string{"x-amz-meta-ok: 1", "x-amz-meta-bad"}, errors2.StatusBadMetaHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c CanonicalHeaders
			err := ComposeHeaders(&c, &RequestHeaders{MetaHeaders: tt.meta}, testNow)
			require.Error(t, err)
			assert.Equal(t, tt.status, errors2.StatusOf(err))
			assert.Equal(t, errors2.KindValidation, errors2.KindOf(err))
		})
	}
}

func TestComposeHeadersErrorNamesHeader(t *testing.T) {
	var c CanonicalHeaders
	err := ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{"x-amz-meta-ok: 1", "x-amz-foo: bar"}}, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata header 1: ")
	assert.Contains(t, err.Error(), errMissingPrefix.Error())
}

func TestComposeHeadersLimitsCheckedFirst(t *testing.T) {
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{"x-amz-meta-keep: me"}}, testNow))

	tooMany := make([]string, MaxMetaHeaderCount+1)
	err := ComposeHeaders(&c, &RequestHeaders{MetaHeaders: tooMany}, testNow)
	assert.True(t, errors.Is(err, errors2.ErrMetaHeadersTooLong))
	// the previous contents are untouched when the limits fail
	assert.Equal(t, "x-amz-meta-keep: me", string(c.Line(1)))
}

func TestComposeHeadersAtLimits(t *testing.T) {
	meta := make([]string, MaxMetaHeaderCount)
	for i := range meta {
		meta[i] = "x-amz-meta-a:b"
	}
	var c CanonicalHeaders
	require.NoError(t, ComposeHeaders(&c, &RequestHeaders{CannedACL: CannedACLPublicReadWrite, MetaHeaders: meta}, testNow))
	assert.Equal(t, MaxMetaHeaderCount+2, c.Len())
	assert.True(t, len(c.Bytes()) <= MaxCanonicalSize)
}

func TestComposeHeadersGeneratedNames(t *testing.T) {
	valid, err := reggen.NewGenerator("x-amz-meta-[a-zA-Z0-9]{1,16}")
	require.NoError(t, err)
	invalid, err := reggen.NewGenerator("x-amz-meta-[a-z0-9]{0,4}[-_.!@ ][a-z0-9]{0,4}")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		var c CanonicalHeaders
		name := valid.Generate(1)
		require.NoError(t, ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{name + ": value"}}, testNow), name)
		got, value := c.Header(1)
		assert.Equal(t, strings.ToLower(name), string(got))
		assert.Equal(t, "value", string(value))

		bad := invalid.Generate(1)
		err := ComposeHeaders(&c, &RequestHeaders{MetaHeaders: []string{bad + ": value"}}, testNow)
		assert.Equal(t, errors2.StatusBadMetaHeader, errors2.StatusOf(err), bad)
	}
}

func TestParseCannedACL(t *testing.T) {
	for _, acl := range []CannedACL{CannedACLPublicRead, CannedACLPublicReadWrite, CannedACLAuthenticatedRead} {
		got, err := ParseCannedACL(acl.String())
		require.NoError(t, err)
		assert.Equal(t, acl, got)
	}
	got, err := ParseCannedACL("")
	require.NoError(t, err)
	assert.Equal(t, CannedACLNone, got)

	_, err = ParseCannedACL("world-writable")
	assert.True(t, errors.Is(err, errors2.ErrBadCannedACL))

	assert.Equal(t, "authenticated-read", CannedACL(42).String())
}
