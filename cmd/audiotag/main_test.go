package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/simonhull/audiotag"
)

// mpegStream is ten MPEG-1 Layer III frames: 128 kbps, 44.1 kHz, stereo.
func mpegStream() []byte {
	frame := append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 417-4)...)
	return bytes.Repeat(frame, 10)
}

func tempMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, mpegStream(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string][]string
		wantErr bool
	}{
		{"single", []string{"artist=Sigur Rós"}, map[string][]string{"ARTIST": {"Sigur Rós"}}, false},
		{"repeated key", []string{"ARTIST=A", "ARTIST=B"}, map[string][]string{"ARTIST": {"A", "B"}}, false},
		{"delete", []string{"COMMENT="}, map[string][]string{"COMMENT": {}}, false},
		{"value keeps equals", []string{"COMMENT=a=b"}, map[string][]string{"COMMENT": {"a=b"}}, false},
		{"missing equals", []string{"ARTIST"}, nil, true},
		{"empty key", []string{"=value"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAssignments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	path := tempMP3(t)

	out, err := run(t, "write", path, "ARTIST=Sigur Rós", "TITLE=Glósóli")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(out, "wrote 2 keys") {
		t.Errorf("write output = %q", out)
	}

	out, err = run(t, "read", path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, want := range []string{"ARTIST=Sigur Rós\n", "TITLE=Glósóli\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("read output %q missing %q", out, want)
		}
	}
}

func TestReadJSON(t *testing.T) {
	path := tempMP3(t)
	if _, err := run(t, "write", path, "GENRE=Rock", "GENRE=Pop"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "read", "--json", path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]map[string][]string
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got := doc[path]["GENRE"]; !reflect.DeepEqual(got, []string{"Rock", "Pop"}) {
		t.Errorf("GENRE = %v, want [Rock Pop]", got)
	}
}

func TestProps(t *testing.T) {
	out, err := run(t, "props", tempMP3(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"codec:       MP3", "sample rate: 44100 Hz", "channels:    2", "bitrate:     128 kbps"} {
		if !strings.Contains(out, want) {
			t.Errorf("props output %q missing %q", out, want)
		}
	}
}

func TestDump(t *testing.T) {
	path := tempMP3(t)
	if _, err := run(t, "write", path, "TITLE=Hoppípolla"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "dump", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(id3v2)") || !strings.Contains(out, "TIT2") {
		t.Errorf("dump output = %q", out)
	}
}

func TestConfigFlag(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "audiotag.yaml")
	if err := os.WriteFile(cfgPath, []byte("id3v2:\n  version: 3\n  encoding: utf16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := tempMP3(t)

	if _, err := run(t, "--config", cfgPath, "write", path, "TITLE=Sæglópur"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("ID3\x03")) {
		t.Errorf("header = % x, want ID3v2.3", data[:4])
	}
}

func TestFormats(t *testing.T) {
	out, err := run(t, "formats")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 || !strings.HasPrefix(lines[0], "PLUGIN") {
		t.Fatalf("formats output = %q", out)
	}
	for _, want := range []string{"id3v2", "read-write", ".mp3", "ogg", "read-only", ".opus", ".m4a"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q", want)
		}
	}
}

func TestConfigCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "in.yaml")
	if err := os.WriteFile(cfgPath, []byte("id3v2:\n  version: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", cfgPath, "--log-level", "debug", "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"version: 3", "level: debug", "vendor: audiotag"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output %q missing %q", out, want)
		}
	}

	// The saved file loads back to the same effective configuration.
	saved := filepath.Join(t.TempDir(), "out.yaml")
	if _, err := run(t, "--config", cfgPath, "--log-level", "debug", "config", "--output", saved); err != nil {
		t.Fatal(err)
	}
	again, err := run(t, "--config", saved, "config")
	if err != nil {
		t.Fatal(err)
	}
	if again != out {
		t.Errorf("reloaded config differs:\n%s\nwant\n%s", again, out)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if out != audiotag.Version+"\n" {
		t.Errorf("version --short = %q", out)
	}

	out, err = run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "audiotag "+audiotag.Version+" (rev ") {
		t.Errorf("version = %q", out)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"read missing file", []string{"read", filepath.Join(t.TempDir(), "missing.mp3")}},
		{"write bad assignment", []string{"write", tempMP3(t), "ARTIST"}},
		{"write without tags", []string{"write", tempMP3(t)}},
		{"bad log level", []string{"--log-level", "loud", "read", tempMP3(t)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
