// Package urlfinder extracts candidate gacha log URLs from a WebView disk
// cache and parses them into a validated, queryable form.
package urlfinder

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/distr1/gachalog/internal/diskcache"
	"github.com/distr1/gachalog/internal/gachaerr"
)

// gachaURLRe matches a dirty cache key that looks like an authenticated
// gacha log URL. Keys are sometimes stored with a leading prefix such as
// "1/0/https://...", so callers strip up to the first "http" before
// matching.
var gachaURLRe = regexp.MustCompile(`(?i)^https://.*(mihoyo\.com|hoyoverse\.com).*\?.*authkey=.+.*$`)

const (
	// KindOpenDiskCache wraps an error opening the cache folder.
	KindOpenDiskCache gachaerr.Kind = "open_disk_cache"
	// KindReadDiskCache wraps an error reading the cache folder.
	KindReadDiskCache gachaerr.Kind = "read_disk_cache"
	// KindOpenWebcaches wraps an error reading a webCaches root.
	KindOpenWebcaches gachaerr.Kind = "open_webcaches"
	// KindEmptyWebcaches is returned when a webCaches root has no usable
	// version subdirectory.
	KindEmptyWebcaches gachaerr.Kind = "empty_webcaches"
)

// DirtyGachaUrl is an unverified, regex-accepted candidate URL, tagged with
// the cache entry's creation time.
type DirtyGachaUrl struct {
	CreationTime time.Time
	Value        string
}

// RetentionPolicy filters candidate URLs by how recently they were written
// to the cache.
type RetentionPolicy interface {
	accepts(now, creationTime time.Time) bool
}

type allPolicy struct{}

func (allPolicy) accepts(now, creationTime time.Time) bool { return true }

// All retains every match regardless of age.
func All() RetentionPolicy { return allPolicy{} }

type beforePolicy struct{ d time.Duration }

func (p beforePolicy) accepts(now, creationTime time.Time) bool {
	return now.Sub(creationTime) <= p.d
}

// Before retains only URLs no older than d.
func Before(d time.Duration) RetentionPolicy { return beforePolicy{d: d} }

// Valid retains only URLs written within the last day.
func Valid() RetentionPolicy { return Before(24 * time.Hour) }

// stripToHTTP drops any leading bytes before the first occurrence of
// "http" (keeping "http" itself), since keys may be stored as
// "1/0/https://...".
func stripToHTTP(s string) (string, bool) {
	idx := strings.Index(s, "http")
	if idx == -1 {
		return "", false
	}
	return s[idx:], true
}

// extractCandidates runs the collector over dataFolder, keeping only
// entries whose (stripped) key text matches gachaURLRe and passes policy.
func extractCandidates(dataFolder string, policy RetentionPolicy, now time.Time) ([]DirtyGachaUrl, error) {
	collector, err := diskcache.NewLongKeyOnlyCollector(dataFolder)
	if err != nil {
		return nil, gachaerr.Wrap(KindOpenDiskCache, "opening disk cache folder "+dataFolder, err)
	}

	urls, err := diskcache.Collect(collector, func(k diskcache.Key) (DirtyGachaUrl, bool) {
		stripped, ok := stripToHTTP(k.Data)
		if !ok || !gachaURLRe.MatchString(stripped) {
			return DirtyGachaUrl{}, false
		}
		creationTime := time.Unix(k.Timestamp, 0).UTC()
		if !policy.accepts(now, creationTime) {
			return DirtyGachaUrl{}, false
		}
		return DirtyGachaUrl{CreationTime: creationTime, Value: stripped}, true
	})
	if err != nil {
		return nil, gachaerr.Wrap(KindReadDiskCache, "reading disk cache folder "+dataFolder, err)
	}

	sort.SliceStable(urls, func(i, j int) bool {
		return urls[i].CreationTime.After(urls[j].CreationTime)
	})
	return urls, nil
}

// FromDiskCache extracts and sorts (newest first) every candidate gacha URL
// from the Simple Cache folder at dataFolder.
func FromDiskCache(dataFolder string, policy RetentionPolicy) ([]DirtyGachaUrl, error) {
	return extractCandidates(dataFolder, policy, time.Now())
}

// versionTuple is a parsed "X.Y.Z" or "X.Y.Z.W" webCaches subdirectory
// name.
type versionTuple [4]uint64

func parseVersionDir(name string) (versionTuple, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 && len(parts) != 4 {
		return versionTuple{}, false
	}
	var v versionTuple
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return versionTuple{}, false
		}
		v[i] = n
	}
	return v, true
}

func (v versionTuple) less(other versionTuple) bool {
	for i := 0; i < 4; i++ {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}

// FromWebCaches locates the numerically-greatest "X.Y.Z"/"X.Y.Z.W"
// subdirectory of root, then extracts candidate URLs from its
// Cache/Cache_Data folder. Non-numeric subdirectory names are ignored.
func FromWebCaches(root string, policy RetentionPolicy) ([]DirtyGachaUrl, error) {
	entries, err := readDirNames(root)
	if err != nil {
		return nil, gachaerr.Wrap(KindOpenWebcaches, "reading webCaches root "+root, err)
	}

	var (
		best      versionTuple
		bestName  string
		bestFound bool
	)
	for _, name := range entries {
		v, ok := parseVersionDir(name)
		if !ok {
			continue
		}
		if !bestFound || best.less(v) {
			best, bestName, bestFound = v, name, true
		}
	}
	if !bestFound {
		return nil, gachaerr.Newf(KindEmptyWebcaches, "no version subdirectory found under %s", root)
	}

	dataFolder := filepath.Join(root, bestName, "Cache", "Cache_Data")
	return FromDiskCache(dataFolder, policy)
}
