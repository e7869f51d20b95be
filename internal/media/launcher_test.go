package media

import (
	"errors"
	"runtime"
	"testing"

	"github.com/pders01/popcorn/internal/config"
)

func TestDetectType(t *testing.T) {
	detector, err := NewTypeDetector()
	if err != nil {
		t.Fatalf("NewTypeDetector() error = %v", err)
	}

	tests := []struct {
		name     string
		url      string
		expected Type
	}{
		{name: "amazon poster", url: "https://m.media-amazon.com/images/M/MV5B.jpg", expected: TypeImage},
		{name: "poster with query", url: "https://img.example.org/poster.PNG?w=300", expected: TypeImage},
		{name: "omdb poster api", url: "https://img.omdbapi.com/?i=tt1375666&apikey=x", expected: TypeImage},
		{name: "imdb title page", url: "https://www.imdb.com/title/tt1375666/", expected: TypePage},
		{name: "html page", url: "https://example.org/about.html", expected: TypePage},
		{name: "unknown", url: "https://example.org/resource", expected: TypeUnknown},
		{name: "not a url", url: "just text", expected: TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detector.DetectType(tt.url); got != tt.expected {
				t.Errorf("DetectType(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestGetDefaultOpener(t *testing.T) {
	detector, err := NewTypeDetector()
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{"darwin": "open", "linux": "xdg-open", "windows": "start"}[runtime.GOOS]
	if want == "" {
		want = "open"
	}
	if got := detector.GetDefaultOpener(); got != want {
		t.Errorf("GetDefaultOpener() = %s, want %s", got, want)
	}
}

type recordedCall struct {
	name string
	args []string
}

func newRecordingLauncher(imageViewer, opener string) (*Launcher, *[]recordedCall) {
	detector, _ := NewTypeDetector()
	var calls []recordedCall
	l := &Launcher{
		imageViewer:   imageViewer,
		defaultOpener: opener,
		detector:      detector,
		start: func(name string, args ...string) error {
			calls = append(calls, recordedCall{name: name, args: args})
			return nil
		},
	}
	return l, &calls
}

func TestLauncher_OpenPoster(t *testing.T) {
	l, calls := newRecordingLauncher("feh", "xdg-open")

	if err := l.OpenPoster("https://m.media-amazon.com/images/M/poster.jpg"); err != nil {
		t.Fatalf("OpenPoster() error = %v", err)
	}
	if len(*calls) != 1 || (*calls)[0].name != "feh" {
		t.Errorf("expected poster to open in feh, got %+v", *calls)
	}

	if err := l.OpenPoster(""); !errors.Is(err, ErrNoPoster) {
		t.Errorf("OpenPoster(\"\") error = %v, want ErrNoPoster", err)
	}
}

func TestLauncher_OpenTitle(t *testing.T) {
	l, calls := newRecordingLauncher("feh", "xdg-open")

	if err := l.OpenTitle("tt1375666"); err != nil {
		t.Fatalf("OpenTitle() error = %v", err)
	}
	got := (*calls)[0]
	if got.name != "xdg-open" {
		t.Errorf("expected default opener, got %s", got.name)
	}
	if len(got.args) != 1 || got.args[0] != "https://www.imdb.com/title/tt1375666/" {
		t.Errorf("unexpected args %v", got.args)
	}
}

func TestLauncher_WindowsStart(t *testing.T) {
	l, calls := newRecordingLauncher("start", "start")

	if err := l.OpenTitle("tt1375666"); err != nil {
		t.Fatal(err)
	}
	got := (*calls)[0]
	if got.name != "cmd" || len(got.args) != 4 || got.args[2] != "" {
		t.Errorf("expected cmd /c start \"\" url, got %+v", got)
	}
}

func TestLauncher_NoApplication(t *testing.T) {
	l, _ := newRecordingLauncher("", "")
	if err := l.Open("https://example.org/resource"); err == nil {
		t.Error("expected error when no opener is configured")
	}
}

func TestNewLauncher_FallsBackToDefaultOpener(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Media.Darwin.Image = []string{"definitely-not-installed-viewer"}
	cfg.Media.Linux.Image = []string{"definitely-not-installed-viewer"}
	cfg.Media.Windows.Image = []string{"definitely-not-installed-viewer"}
	cfg.Media.DefaultOpener = "my-opener"

	l := NewLauncher(cfg)
	if l.imageViewer != "my-opener" {
		t.Errorf("imageViewer = %s, want my-opener", l.imageViewer)
	}
	if l.defaultOpener != "my-opener" {
		t.Errorf("defaultOpener = %s, want my-opener", l.defaultOpener)
	}
}
