// Package config resolves runtime settings from environment variables,
// built-in defaults, and an optional YAML policy file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for the interview client.
type Config struct {
	API      APIConfig
	Session  SessionConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Speech   SpeechConfig
	Rules    RulesConfig
	Reports  ReportsConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	QuestionCap  int
	AdvanceDelay time.Duration
	SnapshotPath string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkSize       int
}

type SpeechConfig struct {
	SynthesisCommand string
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type ReportsConfig struct {
	Dir string
}

// policyFile is the YAML shape of BUILDXHIRE_POLICY_FILE. Values set there
// win over environment variables.
type policyFile struct {
	QuestionCap    *int `yaml:"question_cap"`
	AdvanceDelayMS *int `yaml:"advance_delay_ms"`
}

// Load resolves configuration from environment variables and sensible
// defaults, then applies the optional policy file on top.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	rulesPath := strings.TrimSpace(os.Getenv("BUILDXHIRE_RULES_FILE"))
	if rulesPath == "" {
		rulesPath = firstExisting(filepath.Join(home, ".config", "buildxhire", "answer.rules"))
	}

	cfg := Config{
		API: APIConfig{
			BaseURL: envOrDefault("BUILDXHIRE_API_BASE", "http://localhost:8000"),
			Timeout: time.Duration(envOrDefaultInt("BUILDXHIRE_API_TIMEOUT_MS", 30000)) * time.Millisecond,
		},
		Session: SessionConfig{
			QuestionCap:  envOrDefaultInt("BUILDXHIRE_QUESTION_CAP", 10),
			AdvanceDelay: time.Duration(envOrDefaultInt("BUILDXHIRE_ADVANCE_DELAY_MS", 3000)) * time.Millisecond,
			SnapshotPath: strings.TrimSpace(os.Getenv("BUILDXHIRE_STATE_FILE")),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    strings.TrimSpace(os.Getenv("DEEPGRAM_LANGUAGE")),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("BUILDXHIRE_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("BUILDXHIRE_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("BUILDXHIRE_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("BUILDXHIRE_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("BUILDXHIRE_CHANNELS", 1),
			ChunkSize:       envOrDefaultInt("BUILDXHIRE_AUDIO_CHUNK_SIZE", 4096),
		},
		Speech: SpeechConfig{
			SynthesisCommand: strings.TrimSpace(os.Getenv("BUILDXHIRE_TTS_COMMAND")),
		},
		Rules: RulesConfig{
			Path:           rulesPath,
			IterationLimit: envOrDefaultInt("BUILDXHIRE_RULE_ITERATION_LIMIT", 30),
		},
		Reports: ReportsConfig{
			Dir: envOrDefault("BUILDXHIRE_REPORT_DIR", filepath.Join(home, "buildxhire-reports")),
		},
	}

	if err := applyPolicy(&cfg, strings.TrimSpace(os.Getenv("BUILDXHIRE_POLICY_FILE"))); err != nil {
		return Config{}, err
	}

	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Session.QuestionCap <= 0 {
		cfg.Session.QuestionCap = 10
	}
	if cfg.Session.AdvanceDelay < 0 {
		cfg.Session.AdvanceDelay = 0
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}

	return cfg, nil
}

func applyPolicy(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read policy file %q: %w", path, err)
	}

	var policy policyFile
	if err := yaml.Unmarshal(contents, &policy); err != nil {
		return fmt.Errorf("failed to parse policy file %q: %w", path, err)
	}

	if policy.QuestionCap != nil {
		cfg.Session.QuestionCap = *policy.QuestionCap
	}
	if policy.AdvanceDelayMS != nil {
		cfg.Session.AdvanceDelay = time.Duration(*policy.AdvanceDelayMS) * time.Millisecond
	}
	return nil
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
