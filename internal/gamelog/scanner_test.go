package gamelog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testProfile() Profile {
	return Profile{
		Name:        "test",
		DisplayName: "Starfall (test)",
		DataDirs:    []string{"Starfall_Data"},
		LogFiles:    []string{filepath.Join("TestStudio", "Starfall", "output_log.txt")},
		APIMarker:   "getGachaLog",
	}
}

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	s, err := NewScanner(testProfile())
	if err != nil {
		t.Fatalf("NewScanner error: %v", err)
	}
	return s
}

func TestNewScannerRejectsEmptyProfile(t *testing.T) {
	if _, err := NewScanner(Profile{Name: "empty"}); err == nil {
		t.Error("NewScanner accepted a profile without data directories")
	}
}

func TestDataDirFromLog(t *testing.T) {
	s := newTestScanner(t)

	tests := []struct {
		name    string
		log     string
		want    string
		wantErr error
	}{
		{
			name: "assignment line",
			log:  "Mono path[0] = 'D:/Games/Starfall game/Starfall_Data/Managed'",
			want: filepath.FromSlash("D:/Games/Starfall game/Starfall_Data"),
		},
		{
			name: "raw subsystems line",
			log:  "[Subsystems] Discovering subsystems at path D:/Games/Starfall game/Starfall_Data/UnitySubsystems",
			want: filepath.FromSlash("D:/Games/Starfall game/Starfall_Data"),
		},
		{
			name: "backslash path",
			log:  `Mono config path = 'C:\Starfall\Starfall_Data\MonoBleedingEdge'`,
			want: filepath.FromSlash(`C:\Starfall\Starfall_Data`),
		},
		{
			name: "last mention wins",
			log: strings.Join([]string{
				"Mono path[0] = 'C:/Old Install/Starfall_Data/Managed'",
				"Initialize engine version: 2017.4.30f1",
				"Mono path[0] = 'D:/New Install/Starfall_Data/Managed'",
			}, "\n"),
			want: filepath.FromSlash("D:/New Install/Starfall_Data"),
		},
		{
			name: "absolute path without drive letter",
			log:  "Mono path[0] = '/games/starfall/Starfall_Data/Managed'",
			want: filepath.FromSlash("/games/starfall/Starfall_Data"),
		},
		{
			name:    "no mention",
			log:     "Initialize engine version: 2017.4.30f1\nGfxDevice renderer = Direct3D11",
			wantErr: ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.DataDirFromLog(strings.NewReader(tt.log))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DataDirFromLog error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DataDirFromLog error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DataDirFromLog = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindDataDirOverride(t *testing.T) {
	s := newTestScanner(t)

	root := t.TempDir()
	dataDir := filepath.Join(root, "Starfall_Data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if got, err := s.FindDataDir(dataDir); err != nil || got != dataDir {
		t.Errorf("FindDataDir(dataDir) = %q, %v, want %q", got, err, dataDir)
	}
	if got, err := s.FindDataDir(root); err != nil || got != dataDir {
		t.Errorf("FindDataDir(root) = %q, %v, want %q", got, err, dataDir)
	}

	empty := t.TempDir()
	if _, err := s.FindDataDir(empty); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindDataDir(empty) error = %v, want ErrNotFound", err)
	}
}

func TestFindDataDirOverrideCaseInsensitive(t *testing.T) {
	s := newTestScanner(t)

	root := t.TempDir()
	dataDir := filepath.Join(root, "starfall_data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got, err := s.FindDataDir(dataDir); err != nil || got != dataDir {
		t.Errorf("FindDataDir = %q, %v, want %q", got, err, dataDir)
	}
}

func TestFindDataDirFromLog(t *testing.T) {
	s := newTestScanner(t)

	root := t.TempDir()
	dataDir := filepath.Join(root, "Starfall_Data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	logPath := filepath.Join(root, "output_log.txt")
	content := strings.Join([]string{
		"Initialize engine version: 2017.4.30f1",
		"Mono path[0] = '" + filepath.ToSlash(dataDir) + "/Managed'",
	}, "\n")
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Missing candidates are skipped, existing ones scanned.
	s.SetLogCandidates(filepath.Join(root, "no-such-log.txt"), logPath)
	got, err := s.FindDataDir("")
	if err != nil {
		t.Fatalf("FindDataDir error: %v", err)
	}
	if got != dataDir {
		t.Errorf("FindDataDir = %q, want %q", got, dataDir)
	}
}

func TestFindDataDirSkipsMissingDirectory(t *testing.T) {
	s := newTestScanner(t)

	root := t.TempDir()
	logPath := filepath.Join(root, "output_log.txt")
	content := "Mono path[0] = '" + filepath.ToSlash(root) + "/Gone/Starfall_Data/Managed'"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s.SetLogCandidates(logPath)
	if _, err := s.FindDataDir(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindDataDir error = %v, want ErrNotFound", err)
	}
}

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("global")
	if !ok {
		t.Fatal("ProfileByName(global) not found")
	}
	if len(p.DataDirs) == 0 || p.DataDirs[0] != "GenshinImpact_Data" {
		t.Errorf("global profile data dirs = %v", p.DataDirs)
	}
	if p.APIMarker == "" {
		t.Error("global profile has no API marker")
	}
	if _, ok := ProfileByName("nope"); ok {
		t.Error("ProfileByName(nope) unexpectedly found")
	}
}

func TestProfilesIsolated(t *testing.T) {
	got := Profiles()
	if len(got) == 0 {
		t.Fatal("no built-in profiles")
	}
	got[0].Name = "mutated"
	if again := Profiles(); again[0].Name == "mutated" {
		t.Error("Profiles() aliases the built-in slice")
	}
}
