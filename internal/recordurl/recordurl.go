// Package recordurl extracts the exchange-record API URL from a game
// client's browser cache. The in-game record page leaves its
// authenticated request URL behind in the Chromium disk cache under the
// client's data directory; the freshest entry there is the one tools
// can replay.
package recordurl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoCache means no browser cache file was found under the data
	// directory.
	ErrNoCache = errors.New("recordurl: no web cache found")

	// ErrNoRecordURL means the cache held no record API entry. The page
	// must be opened in game before the URL appears.
	ErrNoRecordURL = errors.New("recordurl: no record URL in cache")
)

// requiredParams must all be present for a record URL to be usable.
var requiredParams = []string{"authkey", "authkey_ver", "game_biz"}

// entryPrefix separates URL entries inside the Chromium cache stream.
var entryPrefix = []byte("1/0/")

// Record is an extracted exchange-record URL and where it came from.
type Record struct {
	// URL is the cleaned record API URL.
	URL string

	// CacheFile is the cache file the URL was read from.
	CacheFile string

	// CachedAt is the cache file's modification time. Authentication
	// keys expire, so a stale time usually means a stale key.
	CachedAt time.Time
}

var versionDir = regexp.MustCompile(`^\d+(\.\d+)*$`)

// CacheCandidates lists the cache files under dataDir that may hold
// record URLs, newest client version first. Only files that exist are
// returned.
func CacheCandidates(dataDir string) []string {
	root := filepath.Join(dataDir, "webCaches")
	var versions []string
	if entries, err := os.ReadDir(root); err == nil {
		for _, e := range entries {
			if e.IsDir() && versionDir.MatchString(e.Name()) {
				versions = append(versions, e.Name())
			}
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return versionLess(versions[j], versions[i])
	})

	var out []string
	for _, v := range versions {
		p := filepath.Join(root, v, "Cache", "Cache_Data", "data_2")
		if fileExists(p) {
			out = append(out, p)
		}
	}
	// Clients before 3.1 kept the cache directly under webCaches.
	legacy := filepath.Join(root, "Cache", "Cache_Data", "data_2")
	if fileExists(legacy) {
		out = append(out, legacy)
	}
	return out
}

// Extract finds the freshest record URL for marker under dataDir. Cache
// files are tried newest first; the first one holding a valid URL wins.
func Extract(dataDir, marker string) (Record, error) {
	candidates := CacheCandidates(dataDir)
	if len(candidates) == 0 {
		return Record{}, fmt.Errorf("%w under %s", ErrNoCache, dataDir)
	}
	var lastErr error
	for _, path := range candidates {
		rec, err := ExtractFile(path, marker)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return Record{}, lastErr
}

// ExtractFile pulls the record URL for marker out of one cache file.
func ExtractFile(path, marker string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, fmt.Errorf("recordurl: open cache: %w", err)
	}
	defer f.Close()

	raw, err := ExtractFromCache(f, marker)
	if err != nil {
		return Record{}, fmt.Errorf("%w (%s)", err, path)
	}
	cleaned, err := CleanURL(raw)
	if err != nil {
		return Record{}, err
	}
	rec := Record{URL: cleaned, CacheFile: path}
	if info, statErr := f.Stat(); statErr == nil {
		rec.CachedAt = info.ModTime()
	}
	return rec, nil
}

// ExtractFromCache scans a Chromium cache stream for the last URL entry
// containing marker. The last entry is the most recent request, which
// carries the freshest authentication key.
func ExtractFromCache(r io.Reader, marker string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("recordurl: read cache: %w", err)
	}
	var found string
	for _, seg := range bytes.Split(data, entryPrefix) {
		if !bytes.HasPrefix(seg, []byte("http")) {
			continue
		}
		u := string(cutPrintable(seg))
		if strings.Contains(u, marker) {
			found = u
		}
	}
	if found == "" {
		return "", ErrNoRecordURL
	}
	return found, nil
}

// cutPrintable truncates b at the first byte outside printable ASCII.
// Cache entries are NUL padded and URLs never contain such bytes.
func cutPrintable(b []byte) []byte {
	for i, c := range b {
		if c < '!' || c > '~' {
			return b[:i]
		}
	}
	return b
}

// CleanURL validates a raw cache entry and normalises it into a
// replayable API URL. The page fragment is dropped and the
// authentication parameters must all be present.
func CleanURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("recordurl: parse %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("recordurl: unexpected scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("recordurl: URL %q has no host", raw)
	}
	q := u.Query()
	for _, p := range requiredParams {
		if q.Get(p) == "" {
			return "", fmt.Errorf("recordurl: URL missing %s parameter", p)
		}
	}
	u.Fragment = ""
	return u.String(), nil
}

// versionLess orders dotted version directory names like 2.13.0.1.
func versionLess(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
