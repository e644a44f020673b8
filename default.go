package audiotag

import (
	"context"
	"sync"
)

var defaultTagger = sync.OnceValue(func() *Tagger {
	t, err := New()
	if err != nil {
		// The built-in configuration always validates.
		panic(err)
	}
	return t
})

// Default returns the shared Tagger used by the package-level functions.
func Default() *Tagger {
	return defaultTagger()
}

// ReadTags reads tags with the default Tagger.
func ReadTags(ctx context.Context, path string) (TagSet, error) {
	return Default().ReadTags(ctx, path)
}

// WriteTags writes tags with the default Tagger.
func WriteTags(ctx context.Context, path string, tags map[string][]string, opts ...SaveOption) (bool, error) {
	return Default().WriteTags(ctx, path, tags, opts...)
}

// ReadAudioProperties reads stream properties with the default Tagger.
func ReadAudioProperties(ctx context.Context, path string) (AudioProperties, error) {
	return Default().ReadAudioProperties(ctx, path)
}

// ReadTagsMany reads several files with the default Tagger.
func ReadTagsMany(ctx context.Context, paths ...string) ([]TagSet, error) {
	return Default().ReadTagsMany(ctx, paths...)
}
