package ops

import (
	"context"
	"fmt"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/francoispqt/gojay"
	"github.com/olekukonko/tablewriter"
)

type encodedKey struct {
	Key     string
	Encoded string
}

func (k *encodedKey) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("key", k.Key)
	enc.StringKey("encoded", k.Encoded)
}

func (k *encodedKey) IsNil() bool {
	return k == nil
}

type encodedKeys []encodedKey

func (kk encodedKeys) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range kk {
		enc.Object(&kk[i])
	}
}

func (kk encodedKeys) IsNil() bool {
	return len(kk) == 0
}

// EncodeKeys prints the URL path encoding of every key
func EncodeKeys(ctx context.Context, keys []string, opts ...Option) error {
	o := NewOptions(opts...)

	ret := make(encodedKeys, 0, len(keys))
	for _, k := range keys {
		ret = append(ret, encodedKey{Key: k, Encoded: amz.EncodeKey(k)})
	}

	switch o.Output {
	case Plain:
		for _, v := range ret {
			fmt.Fprintln(o.Stdout, TabString(v.Key, v.Encoded))
		}
	case JSON:
		if err := gojay.NewEncoder(o.Stdout).EncodeArray(ret); err != nil {
			return fmt.Errorf("failed to encode keys: %w", err)
		}
		fmt.Fprintln(o.Stdout)
	case Pretty:
		fallthrough
	default:
		table := tablewriter.NewWriter(o.Stdout)
		table.SetHeader([]string{"key", "encoded"})
		for _, v := range ret {
			table.Append([]string{v.Key, v.Encoded})
		}
		table.Render()
	}
	return nil
}
