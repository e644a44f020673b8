package audiotag

// SaveOption configures a single WriteTags call.
//
// Example:
//
//	ok, err := t.WriteTags(ctx, "song.mp3", tags,
//	    audiotag.WithBackup(".bak"),
//	    audiotag.WithValidation(),
//	)
type SaveOption func(*saveOptions)

// saveOptions holds configuration for saving files.
type saveOptions struct {
	backupSuffix    string // Suffix for backup file (e.g., ".bak")
	validate        bool   // Re-read after write to verify
	preserveModTime bool   // Keep original modification time
}

// defaultSaveOptions returns the save configuration from cfg.
func defaultSaveOptions(cfg *Config) saveOptions {
	return saveOptions{
		backupSuffix:    cfg.Write.BackupSuffix,
		validate:        cfg.Write.Validate,
		preserveModTime: cfg.Write.PreserveModTime,
	}
}

// WithBackup keeps a copy of the previous file contents.
//
// The backup file has the suffix appended to the original filename:
// WithBackup(".bak") leaves "song.mp3.bak" next to "song.mp3". An existing
// backup is overwritten.
func WithBackup(suffix string) SaveOption {
	return func(o *saveOptions) {
		o.backupSuffix = suffix
	}
}

// WithValidation re-reads the file after writing and checks that it
// decodes to the tags that were written.
//
// This adds a second read and decode per write.
func WithValidation() SaveOption {
	return func(o *saveOptions) {
		o.validate = true
	}
}

// WithPreserveModTime keeps the original file modification time.
//
// By default, saving updates the modification time to the current time.
// Use this when updating metadata should not count as modifying the file.
func WithPreserveModTime() SaveOption {
	return func(o *saveOptions) {
		o.preserveModTime = true
	}
}
