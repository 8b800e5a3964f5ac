package amz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"space and slash", "a b/c", "a+b/c"},
		{"alnum unchanged", "abcXYZ0189", "abcXYZ0189"},
		{"safe punctuation", "-_.!~*'()/", "-_.!~*'()/"},
		{"high bit", "h\xc3\xa9llo", "h%C3%A9llo"},
		{"reserved", "a?b&c=d#e", "a%3Fb%26c%3Dd%23e"},
		{"plus is encoded", "a+b", "a%2Bb"},
		{"control byte", "a\x01", "a%01"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeKey(tt.in))
		})
	}
}

func TestEncodeKeyStable(t *testing.T) {
	in := "photos/2021 summer/é.jpg"
	assert.Equal(t, EncodeKey(in), EncodeKey(in))
}

func TestEncodeKeyIdempotentOnlyOnSafeInput(t *testing.T) {
	safe := "dir/file-name_1.txt"
	assert.Equal(t, safe, EncodeKey(EncodeKey(safe)))

	// an encoded key is not safe input, encoding it again double encodes the escapes
	once := EncodeKey("a b%c")
	assert.Equal(t, "a+b%25c", once)
	assert.Equal(t, "a%2Bb%2525c", EncodeKey(once))
}

func TestAppendEncodedKeyReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 32)
	buf = append(buf, "/bucket/"...)
	buf = AppendEncodedKey(buf, "my key")
	assert.Equal(t, "/bucket/my+key", string(buf))
}
