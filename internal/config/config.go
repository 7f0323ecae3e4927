// Package config loads the run configuration and resolves the paths it names.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rosterlink/internal/avatar"
	"rosterlink/internal/reconcile"
	"rosterlink/internal/roster"
	"rosterlink/lib/configutil"

	"dario.cat/mergo"
)

const DefaultPath = "config.json5"

var (
	ErrTemplateCreated = errors.New("configuration template created, fill it in and run again")
	ErrInvalid         = errors.New("invalid configuration")
)

type LocalConfig struct {
	HtmlFiles []string `json:"html_files"`
}

type FilesConfig struct {
	InputFile     string `json:"input_file"`
	OutputFile    string `json:"output_file"`
	UserIdList    string `json:"user_id_list"`
	NotFoundUsers string `json:"not_found_users"`
	AvatarDir     string `json:"avatar_dir"`
}

type DirsConfig struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type AvatarConfig struct {
	ProfileUrl string `json:"profile_url"`
	PauseMs    int    `json:"pause_ms"`
	TimeoutMs  int    `json:"timeout_ms"`
	UserAgent  string `json:"user_agent"`
	// DumpDir, when set, receives a text file per http exchange.
	DumpDir string `json:"dump_dir"`
}

type SuggestConfig struct {
	Threshold float64 `json:"threshold"`
}

type Config struct {
	Local   LocalConfig     `json:"local"`
	Files   FilesConfig     `json:"files"`
	Dirs    DirsConfig      `json:"dirs"`
	Columns roster.Keywords `json:"columns"`
	Avatar  AvatarConfig    `json:"avatar"`
	Suggest SuggestConfig   `json:"suggest"`
}

// Default holds the value of every key an operator does not set.
func Default() Config {
	return Config{
		Files: FilesConfig{
			OutputFile:    "output.csv",
			UserIdList:    "user_ids.txt",
			NotFoundUsers: "not_found_users.txt",
			AvatarDir:     "avatars",
		},
		Dirs: DirsConfig{
			Input:  "Input",
			Output: "Output",
		},
		Columns: roster.DefaultKeywords(),
		Avatar: AvatarConfig{
			ProfileUrl: avatar.DefaultProfileURL,
			PauseMs:    int(avatar.DefaultPause / time.Millisecond),
			TimeoutMs:  int(avatar.DefaultTimeout / time.Millisecond),
			UserAgent:  avatar.DefaultUserAgent,
		},
		Suggest: SuggestConfig{
			Threshold: reconcile.DefaultSuggestThreshold,
		},
	}
}

// Load reads the configuration at path and fills in defaults. When neither
// path nor its local override exists, a template is written to path and
// ErrTemplateCreated is returned.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		err = WriteTemplate(path)
		if err != nil {
			return Config{}, fmt.Errorf("write configuration template: %w", err)
		}
		return Config{}, fmt.Errorf("%w: %s", ErrTemplateCreated, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read configuration %s: %w", path, err)
	}

	err = mergo.Merge(&cfg, Default())
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var problems []string
	if len(c.Local.HtmlFiles) == 0 {
		problems = append(problems, "local.html_files is empty")
	}
	if c.Files.InputFile == "" {
		problems = append(problems, "files.input_file is not set")
	}
	if len(c.Columns.Nickname) == 0 {
		problems = append(problems, "columns.nickname is empty")
	}
	if !strings.Contains(c.Avatar.ProfileUrl, "%s") {
		problems = append(problems, "avatar.profile_url has no %s placeholder")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) Pause() time.Duration {
	return time.Duration(c.Avatar.PauseMs) * time.Millisecond
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Avatar.TimeoutMs) * time.Millisecond
}

// Paths are the concrete locations a run reads from and writes to.
type Paths struct {
	HtmlFiles      []string
	InputFile      string
	OutputFile     string
	IdentifierList string
	Unmatched      string
	AvatarDir      string
	DumpDir        string
}

// within places a relative path under dir unless it already starts with it.
func within(dir, path string) string {
	if path == "" || dir == "" || filepath.IsAbs(path) {
		return path
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	prefix := filepath.ToSlash(filepath.Clean(dir)) + "/"
	if strings.HasPrefix(clean, prefix) {
		return path
	}
	return filepath.Join(dir, path)
}

// csvPath forces the reconciled table to a .csv extension.
func csvPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
}

// Paths resolves inputs under dirs.input and outputs under dirs.output.
func (c Config) Paths() Paths {
	htmlFiles := make([]string, len(c.Local.HtmlFiles))
	for i, f := range c.Local.HtmlFiles {
		htmlFiles[i] = within(c.Dirs.Input, f)
	}

	output := c.Files.OutputFile
	if output == "" {
		output = "output.csv"
	}

	return Paths{
		HtmlFiles:      htmlFiles,
		InputFile:      within(c.Dirs.Input, c.Files.InputFile),
		OutputFile:     csvPath(within(c.Dirs.Output, output)),
		IdentifierList: within(c.Dirs.Output, c.Files.UserIdList),
		Unmatched:      within(c.Dirs.Output, c.Files.NotFoundUsers),
		AvatarDir:      within(c.Dirs.Output, c.Files.AvatarDir),
		DumpDir:        within(c.Dirs.Output, c.Avatar.DumpDir),
	}
}
