package types

import (
	"testing"
	"time"
)

func TestAudioProperties_LengthSeconds(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     int
	}{
		{0, 0},
		{999 * time.Millisecond, 0},
		{3*time.Minute + 25*time.Second + 600*time.Millisecond, 205},
	}

	for _, tc := range tests {
		a := AudioProperties{Duration: tc.duration}
		if got := a.LengthSeconds(); got != tc.want {
			t.Errorf("LengthSeconds(%v) = %d, want %d", tc.duration, got, tc.want)
		}
	}
}

func TestAudioProperties_String(t *testing.T) {
	tests := []struct {
		name  string
		props AudioProperties
		want  string
	}{
		{
			name:  "mp3 cbr",
			props: AudioProperties{Codec: "MP3", SampleRateHz: 44100, Channels: 2, BitrateKbps: 128},
			want:  "MP3 44.1kHz stereo 128kbps",
		},
		{
			name:  "mp3 vbr mono",
			props: AudioProperties{Codec: "MP3", SampleRateHz: 22050, Channels: 1, BitrateKbps: 64, VBR: true},
			want:  "MP3 22.1kHz mono 64kbps VBR",
		},
		{
			name:  "flac",
			props: AudioProperties{Codec: "FLAC", SampleRateHz: 96000, BitDepth: 24, Channels: 6},
			want:  "FLAC 96.0kHz 24-bit 5.1",
		},
		{
			name:  "codec only",
			props: AudioProperties{Codec: "MP3"},
			want:  "MP3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.props.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChannelDescription(t *testing.T) {
	tests := map[int]string{0: "", 1: "mono", 2: "stereo", 4: "4ch", 6: "5.1", 8: "7.1"}
	for ch, want := range tests {
		if got := channelDescription(ch); got != want {
			t.Errorf("channelDescription(%d) = %q, want %q", ch, got, want)
		}
	}
}
