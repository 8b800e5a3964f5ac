package amz

import (
	"github.com/valyala/bytebufferpool"
)

const (
	urlSafe = "-_.!~*'()/"
	hex     = "0123456789ABCDEF"
)

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isURLSafe(c byte) bool {
	for i := 0; i < len(urlSafe); i++ {
		if urlSafe[i] == c {
			return true
		}
	}
	return false
}

// AppendEncodedKey percent-encodes key for inclusion in a URL path and appends it to dst.
// Alphanumerics and -_.!~*'()/ pass through, a space becomes '+' and every other byte becomes
// %XX with uppercase hex digits.
//
// The encoding is not reversible here and is not idempotent: an already encoded key has its '%'
// bytes encoded again ("a%20b" becomes "a%2520b"). Decoding is left to the server.
func AppendEncodedKey(dst []byte, key string) []byte {
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case isAlnum(c) || isURLSafe(c):
			dst = append(dst, c)
		case c == ' ':
			dst = append(dst, '+')
		default:
			dst = append(dst, '%', hex[c>>4], hex[c&0xf])
		}
	}
	return dst
}

// EncodeKey returns the URL path encoding of key, see AppendEncodedKey
func EncodeKey(key string) string {
	b := bytebufferpool.Get()
	b.B = AppendEncodedKey(b.B, key)
	ret := b.String()
	bytebufferpool.Put(b)
	return ret
}
