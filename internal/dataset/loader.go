// Package dataset loads constellation data files, validates them and swaps
// localized text into a running graph.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emotion-constellation/constellation-core/pkg/logger"
	"github.com/emotion-constellation/constellation-core/pkg/models"
)

// DefaultLocale is loaded when a requested locale has no data file
const DefaultLocale = "en"

// Locale describes one supported language
type Locale struct {
	Code        string `json:"code"`
	Label       string `json:"label"`
	NativeLabel string `json:"nativeLabel"`
}

// SupportedLocales lists the locales data files may be provided for
var SupportedLocales = []Locale{
	{Code: "en", Label: "English", NativeLabel: "English"},
	{Code: "es", Label: "Spanish", NativeLabel: "Español"},
	{Code: "ko", Label: "Korean", NativeLabel: "한국어"},
	{Code: "zh", Label: "Chinese", NativeLabel: "中文"},
	{Code: "ar", Label: "Arabic", NativeLabel: "العربية"},
	{Code: "he", Label: "Hebrew", NativeLabel: "עברית"},
	{Code: "ja", Label: "Japanese", NativeLabel: "日本語"},
	{Code: "fr", Label: "French", NativeLabel: "Français"},
	{Code: "pt", Label: "Portuguese", NativeLabel: "Português"},
	{Code: "it", Label: "Italian", NativeLabel: "Italiano"},
	{Code: "de", Label: "German", NativeLabel: "Deutsch"},
}

// IsSupported reports whether code is a supported locale
func IsSupported(code string) bool {
	for _, l := range SupportedLocales {
		if l.Code == code {
			return true
		}
	}
	return false
}

// FileName returns the data file name of a locale
func FileName(locale string) string {
	return "constellation-" + locale + ".json"
}

// Dataset is a loaded, validated and indexed constellation
type Dataset struct {
	Graph    *models.Constellation
	Locale   string // the locale actually loaded, after fallback
	Path     string
	Warnings []string
}

// Loader reads per-locale data files from one directory
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, logger: logger.Component("dataset")}
}

// SetLogger sets the loader's logger
func (l *Loader) SetLogger(lg *slog.Logger) {
	l.logger = lg
}

// Dir returns the data directory
func (l *Loader) Dir() string { return l.dir }

// Path returns the data file path of a locale
func (l *Loader) Path(locale string) string {
	return filepath.Join(l.dir, FileName(locale))
}

// Load reads the data file of locale, falling back to DefaultLocale when
// that file does not exist.
func (l *Loader) Load(locale string) (*Dataset, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	path := l.Path(locale)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && locale != DefaultLocale {
		l.logger.Warn("locale not found, falling back", "locale", locale, "fallback", DefaultLocale)
		return l.Load(DefaultLocale)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	graph, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	warnings := graph.UnresolvedLinks()
	for _, w := range warnings {
		l.logger.Warn("unresolved link", "link", w, "path", path)
	}
	if graph.Meta.Locale == "" {
		graph.Meta.Locale = locale
	}

	l.logger.Info("dataset loaded",
		"path", path,
		"needs", len(graph.Needs),
		"emotions", len(graph.Emotions))

	return &Dataset{Graph: graph, Locale: locale, Path: path, Warnings: warnings}, nil
}

// Parse decodes, validates and indexes a constellation document. JSON is
// accepted as the YAML subset it is.
func Parse(data []byte) (*models.Constellation, error) {
	var graph models.Constellation
	if err := yaml.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := Validate(&graph); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}
	graph.Index()
	return &graph, nil
}

// Validate rejects empty or duplicate IDs and link strengths outside [0, 1].
// Links to missing needs are not errors; Constellation.UnresolvedLinks
// reports them.
func Validate(c *models.Constellation) error {
	var errs []error

	needs := make(map[string]struct{}, len(c.Needs))
	for i, n := range c.Needs {
		if n == nil || n.ID == "" {
			errs = append(errs, fmt.Errorf("need %d has no id", i))
			continue
		}
		if _, dup := needs[n.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate need id %q", n.ID))
		}
		needs[n.ID] = struct{}{}
	}

	emotions := make(map[string]struct{}, len(c.Emotions))
	for i, e := range c.Emotions {
		if e == nil || e.ID == "" {
			errs = append(errs, fmt.Errorf("emotion %d has no id", i))
			continue
		}
		if _, dup := emotions[e.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate emotion id %q", e.ID))
		}
		emotions[e.ID] = struct{}{}

		for _, link := range e.Links {
			if link.NeedID == "" {
				errs = append(errs, fmt.Errorf("emotion %q has a link without need id", e.ID))
			}
			if link.Strength < 0 || link.Strength > 1 {
				errs = append(errs, fmt.Errorf("emotion %q link to %q: strength %v outside [0, 1]",
					e.ID, link.NeedID, link.Strength))
			}
		}
	}

	return errors.Join(errs...)
}
