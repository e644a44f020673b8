package audiotag

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/simonhull/audiotag/internal/mutate"
)

// WriteTags merges tags into the file at path and saves it.
//
// Keys are case-insensitive. Each supplied key replaces all existing values
// of that key; an empty value list removes the key. Keys not supplied are
// kept. An empty map writes nothing but still checks that the file can be
// decoded.
//
// The file is replaced atomically: on any failure it is left untouched.
// A write that would not change the file's bytes leaves it alone, so
// repeating a write is free.
func (t *Tagger) WriteTags(ctx context.Context, path string, tags map[string][]string, opts ...SaveOption) (bool, error) {
	if err := checkTagMap(path, tags); err != nil {
		return false, err
	}
	return t.writeTags(ctx, t.enqueue(opWrite, path), tags, opts...)
}

// checkTagMap rejects tag maps that can never be written.
func checkTagMap(path string, tags map[string][]string) error {
	if tags == nil {
		return &Error{Kind: KindNotEnoughArguments, Op: opWrite, Path: path, Reason: "a tag map is required"}
	}
	for key := range tags {
		if key == "" {
			return &Error{Kind: KindMalformedEntry, Op: opWrite, Path: path, Reason: "empty tag key"}
		}
	}
	return nil
}

func (t *Tagger) writeTags(ctx context.Context, c *call, tags map[string][]string, opts ...SaveOption) (bool, error) {
	options := t.save
	for _, opt := range opts {
		opt(&options)
	}

	err := t.finish(ctx, c, func(abs string, log *slog.Logger) error {
		f, err := t.load(abs)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}

		merged := f.decoded.Tags.Clone()
		merged.Merge(TagSetFromMap(tags))
		for key, values := range tags {
			if len(values) == 0 {
				merged.Delete(key)
			}
		}

		block, err := f.plugin.Encode(merged, f.decoded)
		if err != nil {
			return err
		}
		out, err := mutate.Apply(f.data, f.decoded.Location, block, f.plugin.Placement())
		if err != nil {
			return err
		}
		if bytes.Equal(out, f.data) {
			log.Debug("tags unchanged, file left alone")
			return nil
		}

		if err := mutate.WriteFile(abs, out, mutate.Options{
			BackupSuffix:    options.backupSuffix,
			PreserveModTime: options.preserveModTime,
		}); err != nil {
			return err
		}
		log.Debug("wrote tags", "format", f.plugin.Name(), "bytes", len(out), "delta", len(out)-len(f.data))

		if options.validate {
			return t.validateWrittenFile(abs, f.plugin, out)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// validateWrittenFile re-reads path and checks it holds exactly what was
// written and decodes.
func (t *Tagger) validateWrittenFile(path string, p Plugin, want []byte) error {
	data, err := readAudioFile(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(data, want) {
		return &Error{Kind: KindIOError, Reason: "validation failed: file contents differ from what was written"}
	}
	if _, err := p.Decode(data); err != nil {
		return err
	}
	return nil
}
