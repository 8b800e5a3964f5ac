package ops

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/assetnote/kites3/pkg/s3"
	"github.com/dustin/go-humanize"
	"github.com/francoispqt/gojay"
	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
)

var ErrAborted = fmt.Errorf("aborted by user")

// TestBucket checks the bucket is accessible and prints its location
func TestBucket(ctx context.Context, bucket string, opts ...Option) error {
	o := NewOptions(opts...)
	e, c, err := o.client()
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		location string
		opErr    error
	)
	if err := c.TestBucket(ctx, nil, bucket, func(l string, err error) {
		location, opErr = l, err
	}); err != nil {
		return err
	}
	if opErr != nil {
		return opErr
	}
	if location == "" {
		location = "default"
	}

	switch o.Output {
	case JSON:
		fmt.Fprintf(o.Stdout, "{\"bucket\":%q,\"location\":%q}\n", bucket, location)
	default:
		fmt.Fprintln(o.Stdout, TabString(bucket, location))
	}
	return nil
}

// CreateBucket creates the bucket with the canned acl and location constraint
func CreateBucket(ctx context.Context, bucket, acl, location string, opts ...Option) error {
	o := NewOptions(opts...)
	cacl, err := amz.ParseCannedACL(acl)
	if err != nil {
		return fmt.Errorf("invalid canned acl %q: %w", acl, err)
	}
	e, c, err := o.client()
	if err != nil {
		return err
	}
	defer e.Close()

	var opErr error
	if err := c.CreateBucket(ctx, nil, bucket, s3.CreateBucketOptions{ACL: cacl, LocationConstraint: location}, func(err error) {
		opErr = err
	}); err != nil {
		return err
	}
	if opErr != nil {
		return opErr
	}
	log.Info().Str("bucket", bucket).Str("acl", cacl.String()).Str("location", location).Msg("created bucket")
	return nil
}

// DeleteBucket deletes the bucket after asking for confirmation unless the options skip it
func DeleteBucket(ctx context.Context, bucket string, opts ...Option) error {
	o := NewOptions(opts...)
	if !o.Yes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete bucket %s", bucket),
			IsConfirm: true,
			Stdout:    os.Stderr,
		}
		v, err := prompt.Run()
		if err != nil || strings.ToLower(v) != "y" {
			return ErrAborted
		}
	}

	e, c, err := o.client()
	if err != nil {
		return err
	}
	defer e.Close()

	var opErr error
	if err := c.DeleteBucket(ctx, nil, bucket, func(err error) {
		opErr = err
	}); err != nil {
		return err
	}
	if opErr != nil {
		return opErr
	}
	log.Info().Str("bucket", bucket).Msg("deleted bucket")
	return nil
}

// ListBucket lists the bucket's keys. With all set every page is fetched, otherwise only the first
func ListBucket(ctx context.Context, bucket string, lo s3.ListOptions, all bool, opts ...Option) error {
	o := NewOptions(opts...)
	e, c, err := o.client()
	if err != nil {
		return err
	}
	defer e.Close()

	var (
		contents s3.ListedObjects
		prefixes []string
		next     string
	)
	for {
		var (
			page  *s3.ListBucketResult
			opErr error
		)
		if err := c.ListBucket(ctx, nil, bucket, lo, func(res *s3.ListBucketResult, err error) {
			page, opErr = res, err
		}); err != nil {
			return err
		}
		if opErr != nil {
			return opErr
		}
		contents = append(contents, page.Contents...)
		prefixes = append(prefixes, page.CommonPrefixes...)
		next = page.NextPageMarker()
		log.Debug().Str("bucket", bucket).Int("keys", len(page.Contents)).Str("next", next).Msg("listed page")

		if !all || next == "" || ctx.Err() != nil {
			break
		}
		lo.Marker = next
	}

	switch o.Output {
	case Plain:
		for _, v := range prefixes {
			fmt.Fprintln(o.Stdout, TabString("PRE", v))
		}
		for _, v := range contents {
			fmt.Fprintln(o.Stdout, TabString(v.Key, strconv.FormatInt(v.Size, 10), v.LastModified.Format("2006-01-02T15:04:05Z07:00"), v.ETag))
		}
	case JSON:
		res := &s3.ListBucketResult{Name: bucket, Prefix: lo.Prefix, Contents: contents, CommonPrefixes: prefixes, NextMarker: next, IsTruncated: next != ""}
		if err := gojay.NewEncoder(o.Stdout).EncodeObject(res); err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}
		fmt.Fprintln(o.Stdout)
	case Pretty:
		fallthrough
	default:
		table := tablewriter.NewWriter(o.Stdout)
		table.SetHeader([]string{"key", "size", "modified", "etag"})
		for _, v := range prefixes {
			table.Append([]string{v, "PRE", "", ""})
		}
		for _, v := range contents {
			table.Append([]string{v.Key, humanize.Bytes(uint64(v.Size)), humanize.Time(v.LastModified), v.ETag})
		}
		table.Render()
		if next != "" {
			log.Info().Str("marker", next).Msg("listing truncated, continue with --marker")
		}
	}
	return nil
}
