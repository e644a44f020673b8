package mp3

import (
	"strconv"
	"strings"
)

// genres is the ID3v1 genre list including the Winamp extensions.
var genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge", "Hip-Hop",
	"Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B", "Rap",
	"Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska", "Death Metal", "Pranks",
	"Soundtrack", "Euro-Techno", "Ambient", "Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance",
	"Classical", "Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel", "Noise",
	"AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative", "Instrumental Pop", "Instrumental Rock",
	"Ethnic", "Gothic", "Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk", "Eurodance", "Dream",
	"Southern Rock", "Comedy", "Cult", "Gangsta", "Top 40", "Christian Rap", "Pop/Funk", "Jungle",
	"Native American", "Cabaret", "New Wave", "Psychadelic", "Rave", "Showtunes", "Trailer", "Lo-Fi",
	"Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro", "Musical", "Rock & Roll", "Hard Rock",
	"Folk", "Folk-Rock", "National Folk", "Swing", "Fast Fusion", "Bebob", "Latin", "Revival",
	"Celtic", "Bluegrass", "Avantgarde", "Gothic Rock", "Progressive Rock", "Psychedelic Rock", "Symphonic Rock", "Slow Rock",
	"Big Band", "Chorus", "Easy Listening", "Acoustic", "Humour", "Speech", "Chanson", "Opera",
	"Chamber Music", "Sonata", "Symphony", "Booty Bass", "Primus", "Porn Groove", "Satire", "Slow Jam",
	"Club", "Tango", "Samba", "Folklore", "Ballad", "Power Ballad", "Rhythmic Soul", "Freestyle",
	"Duet", "Punk Rock", "Drum Solo", "A Cappella", "Euro-House", "Dance Hall", "Goa", "Drum & Bass",
	"Club-House", "Hardcore", "Terror", "Indie", "BritPop", "Afro-Punk", "Polsk Punk", "Beat",
	"Christian Gangsta Rap", "Heavy Metal", "Black Metal", "Crossover", "Contemporary Christian", "Christian Rock", "Merengue", "Salsa",
	"Thrash Metal", "Anime", "JPop", "Synthpop",
}

// noGenre is the ID3v1 genre byte for "unset".
const noGenre = 255

// genreName returns the name for an ID3v1 genre index, or "".
func genreName(idx int) string {
	if idx < 0 || idx >= len(genres) {
		return ""
	}
	return genres[idx]
}

// genreIndex returns the ID3v1 index for a genre name (case-insensitive).
func genreIndex(name string) (int, bool) {
	for i, g := range genres {
		if strings.EqualFold(g, name) {
			return i, true
		}
	}
	return 0, false
}

// resolveGenre expands numeric ID3v2 genre references.
//
// "17" and "(17)" become "Rock"; "(17)Rocksteady" keeps the refinement
// "Rocksteady". Anything else is returned unchanged.
func resolveGenre(v string) string {
	ref := v
	if strings.HasPrefix(v, "(") {
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return v
		}
		if refinement := v[end+1:]; refinement != "" {
			return refinement
		}
		ref = v[1:end]
	}
	idx, err := strconv.Atoi(ref)
	if err != nil {
		return v
	}
	if name := genreName(idx); name != "" {
		return name
	}
	return v
}
