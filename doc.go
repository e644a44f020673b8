// Package audiotag reads and writes audio file tags.
//
// Tags are exposed as a format-agnostic TagSet: upper-case keys mapping to
// ordered lists of values. ID3v2.3/2.4 (MP3), ID3v1 and FLAC Vorbis
// comments are read and written out of the box. Ogg Vorbis, Opus and MP4
// are read only: writing them fails with ErrUnsupportedWrite. Further
// formats plug in through the Plugin interface.
//
// # Quick Start
//
//	ctx := context.Background()
//
//	tags, err := audiotag.ReadTags(ctx, "song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(tags.Get("ARTIST"))
//
//	_, err = audiotag.WriteTags(ctx, "song.mp3", map[string][]string{
//		"ARTIST": {"Björk"},
//		"GENRE":  {}, // removes the key
//	})
//
// # Safety
//
// Writes never modify a file in place. The new contents go to a temporary
// file in the same directory which is synced and renamed over the
// original, so a failed write leaves the original bytes untouched.
//
// Operations on the same file are serialized in arrival order across all
// goroutines sharing a Tagger. Operations on different files run in
// parallel. A waiter that exceeds the lock timeout fails with
// ErrLockTimeout without affecting the operation holding the lock.
//
// # Configuration
//
// New accepts functional options. A YAML file can supply them all:
//
//	cfg, err := audiotag.LoadConfig("audiotag.yaml")
//	t, err := audiotag.New(
//		audiotag.WithConfig(cfg),
//		audiotag.WithLogger(slog.Default()),
//		audiotag.WithMetrics(prometheus.DefaultRegisterer),
//	)
//
// # Asynchronous Use
//
// The Async methods return a Future and run on a bounded worker pool:
//
//	f := t.ReadTagsAsync(ctx, "song.flac")
//	tags, err := f.Wait(ctx)
//
// ReadTagsMany reads many files concurrently and returns results in order.
//
// # Error Handling
//
// Every error is an *Error carrying a Kind, the operation and the path.
// Match kinds with errors.Is:
//
//	if errors.Is(err, audiotag.ErrLockTimeout) {
//		// retry later
//	}
package audiotag
