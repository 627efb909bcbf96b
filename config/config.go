package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

// TokenEnvKey names the environment variable holding the Discord bot token.
// The token never lives in the config file.
const TokenEnvKey = "DISCORD_TOKEN"

type Settings struct {
	Logging         LoggingConfig   `yaml:"logging"`
	EmbedBehaviours EmbedBehaviours `yaml:"embed_behaviours"`
	Modules         Modules         `yaml:"modules"`

	// FetchTimeoutSeconds bounds every plain HTTP fetch. 0 means 30.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`

	discordToken string
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EmbedBehaviour is the per-category content policy: whether flagged content
// embeds fully by default and whether a caller may override that per request.
type EmbedBehaviour struct {
	Default       bool `yaml:"default"`
	AllowOverride bool `yaml:"allow_override"`
}

type EmbedBehaviours struct {
	NSFW    EmbedBehaviour `yaml:"nsfw"`
	Spoiler EmbedBehaviour `yaml:"spoiler"`
}

// Modules holds per-scraper settings. A scraper is registered only when its
// section is present in the config file.
type Modules struct {
	Reddit  *RedditSettings  `yaml:"reddit"`
	NineGag *NineGagSettings `yaml:"ninegag"`
	Twitter *TwitterSettings `yaml:"twitter"`
	Imgur   *ImgurSettings   `yaml:"imgur"`
}

type RedditSettings struct{}

type NineGagSettings struct{}

type TwitterSettings struct {
	// ChromeExecutable overrides the browser binary used for rendering.
	// Empty means chromedp's default lookup.
	ChromeExecutable string `yaml:"chrome_executable"`

	// RenderTimeoutSeconds bounds a single headless render. 0 means 30.
	RenderTimeoutSeconds int `yaml:"render_timeout_seconds"`
}

type ImgurSettings struct{}

// DiscordToken returns the bot token loaded from the environment.
func (s *Settings) DiscordToken() string {
	return s.discordToken
}

// String implements fmt.Stringer with the token redacted so Settings can be
// logged safely.
func (s *Settings) String() string {
	return fmt.Sprintf("Settings{logging: %s, embed_behaviours: %+v, modules: %+v}",
		s.Logging.Level, s.EmbedBehaviours, s.Modules)
}

// Load reads .env (if present) and config.yaml from path. An empty path
// searches upward from the working directory for a config.yaml.
func Load(path string) (*Settings, error) {
	if path == "" {
		base := findBasePath()
		godotenv.Load(filepath.Join(base, ENV_FILE))
		path = filepath.Join(base, CONFIG_FILE)
	} else {
		godotenv.Load(filepath.Join(filepath.Dir(path), ENV_FILE))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file at %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unable to parse config file at %s: %w", path, err)
	}

	s.discordToken = os.Getenv(TokenEnvKey)

	return &s, nil
}

// findBasePath walks up from the working directory until it finds a
// directory containing config.yaml.
func findBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
