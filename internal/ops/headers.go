package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/francoispqt/gojay"
	"github.com/olekukonko/tablewriter"
)

// CanonicalHeaders prints the canonical header set a request with the given canned ACL and
// metadata headers would carry. now stamps the date header, time.Now when zero
func CanonicalHeaders(ctx context.Context, acl string, meta []string, now time.Time, opts ...Option) error {
	o := NewOptions(opts...)

	cacl, err := amz.ParseCannedACL(acl)
	if err != nil {
		return fmt.Errorf("invalid canned acl %q: %w", acl, err)
	}
	if now.IsZero() {
		now = time.Now()
	}

	var ch amz.CanonicalHeaders
	if err := amz.ComposeHeaders(&ch, &amz.RequestHeaders{CannedACL: cacl, MetaHeaders: meta}, now); err != nil {
		return err
	}

	switch o.Output {
	case Plain:
		fmt.Fprint(o.Stdout, ch.String())
	case JSON:
		enc := gojay.NewEncoder(o.Stdout)
		err := enc.EncodeArray(gojay.EncodeArrayFunc(func(enc *gojay.Encoder) {
			for _, line := range ch.Strings() {
				enc.String(line)
			}
		}))
		if err != nil {
			return fmt.Errorf("failed to encode headers: %w", err)
		}
		fmt.Fprintln(o.Stdout)
	case Pretty:
		fallthrough
	default:
		table := tablewriter.NewWriter(o.Stdout)
		table.SetHeader([]string{"#", "name", "value"})
		for i := 0; i < ch.Len(); i++ {
			name, value := ch.Header(i)
			table.Append([]string{fmt.Sprint(i), string(name), string(value)})
		}
		table.Render()
	}
	return nil
}
