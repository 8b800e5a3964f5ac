package s3test

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// Object is a stored object
type Object struct {
	Key          string
	Body         []byte
	ETag         string
	ContentType  string
	ACL          string
	Meta         map[string]string
	LastModified time.Time
}

// Bucket is a stored bucket
type Bucket struct {
	Name     string
	Location string
	ACL      string
	Created  time.Time
	objects  map[string]*Object
}

// Store is an in memory object store safe for concurrent use
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		buckets: make(map[string]*Bucket),
		now:     time.Now,
	}
}

// CreateBucket returns false if the bucket already exists
func (s *Store) CreateBucket(name, location, acl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[name]; ok {
		return false
	}
	s.buckets[name] = &Bucket{
		Name:     name,
		Location: location,
		ACL:      acl,
		Created:  s.now().UTC(),
		objects:  make(map[string]*Object),
	}
	return true
}

func (s *Store) Bucket(name string) (Bucket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[name]
	if !ok {
		return Bucket{}, false
	}
	return *b, true
}

// protocol error codes
const (
	codeNoSuchBucket   = "NoSuchBucket"
	codeBucketNotEmpty = "BucketNotEmpty"
	codeNoSuchKey      = "NoSuchKey"
)

// DeleteBucket returns the protocol error code on failure, "" on success
func (s *Store) DeleteBucket(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[name]
	if !ok {
		return codeNoSuchBucket
	}
	if len(b.objects) > 0 {
		return codeBucketNotEmpty
	}
	delete(s.buckets, name)
	return ""
}

// Put stores an object, returning false if the bucket does not exist
func (s *Store) Put(bucket string, o Object) (*Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, false
	}
	sum := md5.Sum(o.Body)
	o.ETag = `"` + hex.EncodeToString(sum[:]) + `"`
	o.LastModified = s.now().UTC()
	b.objects[o.Key] = &o
	return &o, true
}

// Get returns the object or the protocol error code explaining why it is missing
func (s *Store) Get(bucket, key string) (*Object, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, codeNoSuchBucket
	}
	o, ok := b.objects[key]
	if !ok {
		return nil, codeNoSuchKey
	}
	return o, ""
}

// Delete removes the object. Deleting a missing key succeeds like it does against S3
func (s *Store) Delete(bucket, key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return codeNoSuchBucket
	}
	delete(b.objects, key)
	return ""
}

// ListResult is one page of a listing
type ListResult struct {
	Objects        []*Object
	CommonPrefixes []string
	Truncated      bool
	NextMarker     string
}

// List returns the keys after marker starting with prefix, rolling keys containing delimiter after
// the prefix up into common prefixes
func (s *Store) List(bucket, prefix, marker, delimiter string, maxKeys int) (*ListResult, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, codeNoSuchBucket
	}

	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if !strings.HasPrefix(k, prefix) || k <= marker {
			continue
		}
		// a marker naming a common prefix skips everything rolled up into it
		if delimiter != "" && marker != "" && strings.HasSuffix(marker, delimiter) && strings.HasPrefix(k, marker) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ret := &ListResult{}
	seen := make(map[string]bool)
	count := 0
	for _, k := range keys {
		if delimiter != "" {
			if i := strings.Index(k[len(prefix):], delimiter); i >= 0 {
				cp := k[:len(prefix)+i+len(delimiter)]
				if seen[cp] {
					continue
				}
				if count == maxKeys {
					ret.Truncated = true
					break
				}
				seen[cp] = true
				ret.CommonPrefixes = append(ret.CommonPrefixes, cp)
				ret.NextMarker = cp
				count++
				continue
			}
		}
		if count == maxKeys {
			ret.Truncated = true
			break
		}
		ret.Objects = append(ret.Objects, b.objects[k])
		ret.NextMarker = k
		count++
	}
	if !ret.Truncated {
		ret.NextMarker = ""
	}
	return ret, ""
}
