package media

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/popcorn/internal/catalog"
	"github.com/pders01/popcorn/internal/config"
	"github.com/pders01/popcorn/internal/debuglog"
)

type Type int

const (
	TypeImage Type = iota
	TypePage
	TypeUnknown
)

func (t Type) String() string {
	switch t {
	case TypeImage:
		return "image"
	case TypePage:
		return "page"
	default:
		return "unknown"
	}
}

var ErrNoPoster = errors.New("no poster available")

// Launcher hands posters and title pages to desktop applications.
type Launcher struct {
	imageViewer   string
	defaultOpener string
	detector      *TypeDetector

	// start launches a detached process. Replaced in tests.
	start func(name string, args ...string) error
}

func NewLauncher(cfg *config.Config) *Launcher {
	detector, err := NewTypeDetector()
	if err != nil {
		debuglog.Warnf("media types unreadable, using defaults: %v", err)
		detector = &TypeDetector{config: &TypesConfig{}}
	}

	defaultOpener := cfg.Media.DefaultOpener
	if defaultOpener == "" {
		defaultOpener = detector.GetDefaultOpener()
	}

	var players config.MediaPlayers
	switch runtime.GOOS {
	case "linux":
		players = cfg.Media.Linux
	case "windows":
		players = cfg.Media.Windows
	default:
		players = cfg.Media.Darwin
	}

	imageViewer := findCommand(players.Image...)
	if imageViewer == "" {
		imageViewer = defaultOpener
	}

	return &Launcher{
		imageViewer:   imageViewer,
		defaultOpener: defaultOpener,
		detector:      detector,
		start:         startDetached,
	}
}

// Open picks an application by link type and starts it without waiting.
func (l *Launcher) Open(link string) error {
	app := l.defaultOpener
	if l.detector.DetectType(link) == TypeImage {
		app = l.imageViewer
	}
	if app == "" {
		return fmt.Errorf("no application found to open %s", link)
	}

	debuglog.Debugf("opening %s with %s", link, app)
	if app == "start" {
		// start is a cmd.exe builtin; the empty argument is the window title.
		return l.start("cmd", "/c", "start", "", link)
	}
	return l.start(app, link)
}

func (l *Launcher) OpenPoster(posterURL string) error {
	if posterURL == "" {
		return ErrNoPoster
	}
	return l.Open(posterURL)
}

func (l *Launcher) OpenTitle(id string) error {
	return l.Open(catalog.TitleURL(id))
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
