package gamelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrNotFound means no installation could be located by any strategy.
	ErrNotFound = errors.New("gamelog: installation not found")
	// ErrUnsupported means the strategy does not exist on this platform.
	ErrUnsupported = errors.New("gamelog: not supported on this platform")
)

// Profile describes one supported game client: where it logs, what its
// data directory is called, and how to recognize its record API.
type Profile struct {
	Name        string
	DisplayName string

	// DataDirs are the names of the client's Unity data directory, e.g.
	// "GenshinImpact_Data". The web cache lives below it.
	DataDirs []string

	// LogFiles are player log locations relative to AppData/LocalLow.
	LogFiles []string

	// RegistryKeys are uninstall keys probed on Windows for InstallPath.
	RegistryKeys []string

	// APIMarker is the substring that identifies the exchange-record API
	// in cached URLs.
	APIMarker string
}

var profiles = []Profile{
	{
		Name:        "global",
		DisplayName: "Genshin Impact (Global)",
		DataDirs:    []string{"GenshinImpact_Data"},
		LogFiles: []string{
			filepath.Join("miHoYo", "Genshin Impact", "output_log.txt"),
		},
		RegistryKeys: []string{
			`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Genshin Impact`,
			`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall\Genshin Impact`,
		},
		APIMarker: "getGachaLog",
	},
	{
		Name:        "cn",
		DisplayName: "原神 (CN)",
		DataDirs:    []string{"YuanShen_Data"},
		LogFiles: []string{
			filepath.Join("miHoYo", "原神", "output_log.txt"),
		},
		RegistryKeys: []string{
			`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\原神`,
			`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall\原神`,
		},
		APIMarker: "getGachaLog",
	},
}

// Profiles returns the built-in client profiles.
func Profiles() []Profile {
	return append([]Profile(nil), profiles...)
}

// ProfileByName looks up a built-in profile by its short name.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Scanner locates a client's data directory for one profile. Strategies
// run in order: explicit override, player log scan, Windows registry.
type Scanner struct {
	profile       Profile
	parser        *Parser
	pathRe        *regexp.Regexp
	logCandidates []string
	logf          func(format string, args ...any)
}

// NewScanner builds a scanner for profile.
func NewScanner(profile Profile) (*Scanner, error) {
	if len(profile.DataDirs) == 0 {
		return nil, fmt.Errorf("gamelog: profile %q has no data directories", profile.Name)
	}
	parser, err := NewParser()
	if err != nil {
		return nil, err
	}
	quoted := make([]string, len(profile.DataDirs))
	for i, d := range profile.DataDirs {
		quoted[i] = regexp.QuoteMeta(d)
	}
	// A path is a drive-letter or absolute location ending in one of the
	// data directory names.
	re, err := regexp.Compile(`((?:[A-Za-z]:)?[\\/][^:*?"<>|'\r\n]*?(?:` + strings.Join(quoted, "|") + `))`)
	if err != nil {
		return nil, fmt.Errorf("gamelog: build path pattern: %w", err)
	}
	return &Scanner{profile: profile, parser: parser, pathRe: re}, nil
}

// Profile returns the profile the scanner was built for.
func (s *Scanner) Profile() Profile { return s.profile }

// SetLogf routes scan diagnostics to logf.
func (s *Scanner) SetLogf(logf func(format string, args ...any)) { s.logf = logf }

func (s *Scanner) debugf(format string, args ...any) {
	if s.logf != nil {
		s.logf("gamelog: "+format, args...)
	}
}

// SetLogCandidates overrides the player log locations searched by
// FindDataDir (used by the --log-file flag and tests).
func (s *Scanner) SetLogCandidates(paths ...string) {
	s.logCandidates = append([]string(nil), paths...)
}

// LogCandidates returns the player log locations that will be scanned.
func (s *Scanner) LogCandidates() []string {
	if len(s.logCandidates) > 0 {
		return append([]string(nil), s.logCandidates...)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	base := filepath.Join(home, "AppData", "LocalLow")
	out := make([]string, 0, len(s.profile.LogFiles))
	for _, rel := range s.profile.LogFiles {
		out = append(out, filepath.Join(base, rel))
	}
	return out
}

// FindDataDir locates the client's data directory. A non-empty override
// is honoured first: it may be the data directory itself or the install
// root containing it. Then the player logs are scanned, then the Windows
// registry. Only directories that exist are returned.
func (s *Scanner) FindDataDir(override string) (string, error) {
	if override != "" {
		if dir, ok := s.dataDirUnder(override); ok {
			return dir, nil
		}
		return "", fmt.Errorf("%w: no %s under %s", ErrNotFound, strings.Join(s.profile.DataDirs, "/"), override)
	}

	for _, logPath := range s.LogCandidates() {
		f, err := os.Open(logPath)
		if err != nil {
			continue
		}
		dir, scanErr := s.DataDirFromLog(f)
		f.Close()
		if scanErr != nil {
			s.debugf("scan %s: %v", logPath, scanErr)
			continue
		}
		if isDir(dir) {
			s.debugf("data dir from %s: %s", logPath, dir)
			return dir, nil
		}
		s.debugf("log %s names missing directory %s", logPath, dir)
	}

	if root, err := installPathFromRegistry(s.profile); err == nil {
		if dir, ok := s.dataDirUnder(root); ok {
			s.debugf("data dir from registry: %s", dir)
			return dir, nil
		}
	} else if !errors.Is(err, ErrUnsupported) && !errors.Is(err, ErrNotFound) {
		s.debugf("registry probe: %v", err)
	}

	return "", ErrNotFound
}

// dataDirUnder resolves root to an existing data directory: either root
// itself or a direct child named like one.
func (s *Scanner) dataDirUnder(root string) (string, bool) {
	base := filepath.Base(filepath.Clean(root))
	for _, dd := range s.profile.DataDirs {
		if strings.EqualFold(base, dd) && isDir(root) {
			return filepath.Clean(root), true
		}
	}
	for _, dd := range s.profile.DataDirs {
		child := filepath.Join(root, dd)
		if isDir(child) {
			return child, true
		}
	}
	return "", false
}

// DataDirFromLog extracts the data directory path named by log content.
// Assignment lines are parsed structurally; everything else falls back to
// a raw path match. The last mention wins, so a reinstall that moved the
// client supersedes older lines.
func (s *Scanner) DataDirFromLog(r io.Reader) (string, error) {
	var found string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		candidate := line
		if strings.Contains(line, "=") {
			if entry, err := s.parser.ParseLine(line); err == nil {
				candidate = entry.ValueString()
			}
		}
		if m := s.pathRe.FindString(candidate); m != "" {
			found = m
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read log: %w", err)
	}
	if found == "" {
		return "", ErrNotFound
	}
	return filepath.FromSlash(found), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
