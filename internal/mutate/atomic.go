package mutate

import (
	"io"
	"os"
	"path/filepath"

	"github.com/simonhull/audiotag/internal/types"
)

// Options controls how WriteFile replaces a file.
type Options struct {
	// BackupSuffix, when set, keeps a copy of the previous file at
	// path+BackupSuffix. An existing backup is overwritten.
	BackupSuffix string

	// PreserveModTime restores the previous modification time after the
	// replace.
	PreserveModTime bool
}

// renameFile is swapped in tests to simulate a failing replace.
var renameFile = os.Rename

// WriteFile atomically replaces the file at path with data.
//
// The data goes to a temporary file in the same directory, which is synced,
// closed and renamed over path. The permission bits of the previous file are
// kept. If anything fails before the rename, the temporary file is removed
// and path is left exactly as it was. All failures are IOError.
func WriteFile(path string, data []byte, opts Options) error {
	info, err := os.Stat(path)
	if err != nil {
		return ioError("stat", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".audiotag-*.tmp")
	if err != nil {
		return ioError("create temp file", path, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return ioError("write temp file", path, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return ioError("chmod temp file", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return ioError("sync temp file", path, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close temp file", path, err)
	}

	if opts.BackupSuffix != "" {
		if err := backup(path, path+opts.BackupSuffix); err != nil {
			return ioError("create backup", path, err)
		}
	}

	if err := renameFile(tmpPath, path); err != nil {
		return ioError("rename temp file", path, err)
	}
	success = true

	syncDir(filepath.Dir(path))

	if opts.PreserveModTime {
		// Non-fatal: the content is already in place.
		_ = os.Chtimes(path, info.ModTime(), info.ModTime())
	}
	return nil
}

// backup leaves the current file in place and puts a copy at dst, using a
// hard link when the filesystem allows it.
func backup(src, dst string) error {
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Link(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// syncDir flushes the directory entry for the rename. Best effort: not every
// platform allows syncing a directory.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func ioError(op, path string, err error) error {
	return &types.Error{Kind: types.KindIOError, Op: op, Path: path, Err: err}
}
