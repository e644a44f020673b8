package mutate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simonhull/audiotag/internal/types"
)

func writeFixture(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// tempFiles lists leftover temporary files next to path.
func tempFiles(t *testing.T, path string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".audiotag-*.tmp"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestWriteFile(t *testing.T) {
	path := writeFixture(t, "old contents", 0o640)

	if err := WriteFile(path, []byte("new contents"), Options{}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if got := readFile(t, path); got != "new contents" {
		t.Errorf("contents = %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	if left := tempFiles(t, path); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestWriteFile_Backup(t *testing.T) {
	path := writeFixture(t, "version 1", 0o644)
	if err := os.WriteFile(path+".bak", []byte("stale backup"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("version 2"), Options{BackupSuffix: ".bak"}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if got := readFile(t, path); got != "version 2" {
		t.Errorf("contents = %q", got)
	}
	if got := readFile(t, path+".bak"); got != "version 1" {
		t.Errorf("backup = %q, want previous contents", got)
	}
}

func TestWriteFile_PreserveModTime(t *testing.T) {
	path := writeFixture(t, "old", 0o644)
	past := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new"), Options{PreserveModTime: true}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), past)
	}
}

func TestWriteFile_FailedRenameLeavesOriginal(t *testing.T) {
	path := writeFixture(t, "original bytes", 0o644)
	past := time.Date(2021, 6, 7, 8, 9, 10, 0, time.UTC)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	renameFile = func(string, string) error { return errors.New("disk on fire") }
	t.Cleanup(func() { renameFile = os.Rename })

	err := WriteFile(path, []byte("replacement"), Options{})
	if !errors.Is(err, types.ErrIO) {
		t.Fatalf("WriteFile() error = %v, want IOError", err)
	}
	var te *types.Error
	if !errors.As(err, &te) || te.Path != path {
		t.Errorf("error does not name the file: %v", err)
	}

	if got := readFile(t, path); got != "original bytes" {
		t.Errorf("original modified: %q", got)
	}
	info, _ := os.Stat(path)
	if !info.ModTime().Equal(past) {
		t.Errorf("mtime changed to %v", info.ModTime())
	}
	if left := tempFiles(t, path); len(left) != 0 {
		t.Errorf("temp files left behind: %v", left)
	}
}

func TestWriteFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.mp3")
	err := WriteFile(path, []byte("x"), Options{})
	if !errors.Is(err, types.ErrIO) {
		t.Errorf("WriteFile() error = %v, want IOError", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("WriteFile created a file that did not exist")
	}
}
