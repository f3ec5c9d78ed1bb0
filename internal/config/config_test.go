package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected api base: %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Fatalf("unexpected api timeout: %s", cfg.API.Timeout)
	}
	if cfg.Session.QuestionCap != 10 {
		t.Fatalf("unexpected question cap: %d", cfg.Session.QuestionCap)
	}
	if cfg.Session.AdvanceDelay != 3*time.Second {
		t.Fatalf("unexpected advance delay: %s", cfg.Session.AdvanceDelay)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.Channels != 1 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
}

func TestLoadFindsDefaultRulesFile(t *testing.T) {
	home := t.TempDir()
	rulesPath := filepath.Join(home, ".config", "buildxhire", "answer.rules")

	if err := os.MkdirAll(filepath.Dir(rulesPath), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(rulesPath, []byte("aaa => bbb\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("BUILDXHIRE_RULES_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Rules.Path != rulesPath {
		t.Fatalf("expected default rules file, got %q", cfg.Rules.Path)
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	home := t.TempDir()
	rules := filepath.Join(home, "my.rules")
	if err := os.WriteFile(rules, []byte("x => y\n"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("BUILDXHIRE_API_BASE", "https://interviews.example.com")
	t.Setenv("BUILDXHIRE_API_TIMEOUT_MS", "5000")
	t.Setenv("BUILDXHIRE_QUESTION_CAP", "5")
	t.Setenv("BUILDXHIRE_ADVANCE_DELAY_MS", "1500")
	t.Setenv("BUILDXHIRE_STATE_FILE", "/tmp/session.json")
	t.Setenv("DEEPGRAM_API_KEY", "test-key")
	t.Setenv("DEEPGRAM_API_BASE", "https://example.com/v1")
	t.Setenv("DEEPGRAM_MODEL", "nova-3")
	t.Setenv("DEEPGRAM_LANGUAGE", "en")
	t.Setenv("DEEPGRAM_SMART_FORMAT", "false")
	t.Setenv("BUILDXHIRE_FFMPEG_COMMAND", "my-ffmpeg")
	t.Setenv("BUILDXHIRE_AUDIO_INPUT_FORMAT", "alsa")
	t.Setenv("BUILDXHIRE_AUDIO_INPUT_DEVICE", "mic0")
	t.Setenv("BUILDXHIRE_SAMPLE_RATE", "22050")
	t.Setenv("BUILDXHIRE_CHANNELS", "2")
	t.Setenv("BUILDXHIRE_AUDIO_CHUNK_SIZE", "512")
	t.Setenv("BUILDXHIRE_TTS_COMMAND", "espeak")
	t.Setenv("BUILDXHIRE_RULES_FILE", rules)
	t.Setenv("BUILDXHIRE_RULE_ITERATION_LIMIT", "42")
	t.Setenv("BUILDXHIRE_REPORT_DIR", "/tmp/reports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://interviews.example.com" || cfg.API.Timeout != 5*time.Second {
		t.Fatalf("unexpected api config: %+v", cfg.API)
	}
	if cfg.Session.QuestionCap != 5 || cfg.Session.AdvanceDelay != 1500*time.Millisecond {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Session.SnapshotPath != "/tmp/session.json" {
		t.Fatalf("unexpected snapshot path: %q", cfg.Session.SnapshotPath)
	}
	if cfg.Deepgram.APIKey != "test-key" || cfg.Deepgram.APIBaseURL != "https://example.com/v1" {
		t.Fatalf("unexpected deepgram config: %+v", cfg.Deepgram)
	}
	if cfg.Deepgram.Model != "nova-3" || cfg.Deepgram.Language != "en" || cfg.Deepgram.SmartFormat {
		t.Fatalf("unexpected deepgram model/language/smart format: %+v", cfg.Deepgram)
	}
	if cfg.Audio.RecorderCommand != "my-ffmpeg" || cfg.Audio.InputFormat != "alsa" || cfg.Audio.InputDevice != "mic0" {
		t.Fatalf("unexpected audio config: %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 22050 || cfg.Audio.Channels != 2 || cfg.Audio.ChunkSize != 512 {
		t.Fatalf("unexpected sample/channels/chunk: %+v", cfg.Audio)
	}
	if cfg.Speech.SynthesisCommand != "espeak" {
		t.Fatalf("unexpected speech config: %+v", cfg.Speech)
	}
	if cfg.Rules.Path != rules || cfg.Rules.IterationLimit != 42 {
		t.Fatalf("unexpected rules config: %+v", cfg.Rules)
	}
	if cfg.Reports.Dir != "/tmp/reports" {
		t.Fatalf("unexpected reports dir: %q", cfg.Reports.Dir)
	}
}

func TestLoadInvalidNumericValuesFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BUILDXHIRE_SAMPLE_RATE", "bad")
	t.Setenv("BUILDXHIRE_CHANNELS", "-1")
	t.Setenv("BUILDXHIRE_RULE_ITERATION_LIMIT", "0")
	t.Setenv("BUILDXHIRE_AUDIO_CHUNK_SIZE", "5")
	t.Setenv("BUILDXHIRE_QUESTION_CAP", "-3")
	t.Setenv("DEEPGRAM_SMART_FORMAT", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("expected default sample rate, got %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != 1 {
		t.Fatalf("expected default channels, got %d", cfg.Audio.Channels)
	}
	if cfg.Rules.IterationLimit != 30 {
		t.Fatalf("expected default iteration limit, got %d", cfg.Rules.IterationLimit)
	}
	if cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("expected chunk size fallback, got %d", cfg.Audio.ChunkSize)
	}
	if cfg.Session.QuestionCap != 10 {
		t.Fatalf("expected default question cap, got %d", cfg.Session.QuestionCap)
	}
	if !cfg.Deepgram.SmartFormat {
		t.Fatalf("expected default smart format true")
	}
}

func TestLoadAppliesPolicyFile(t *testing.T) {
	home := t.TempDir()
	policyPath := filepath.Join(home, "policy.yaml")
	policy := "question_cap: 6\nadvance_delay_ms: 500\n"
	if err := os.WriteFile(policyPath, []byte(policy), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("BUILDXHIRE_QUESTION_CAP", "10")
	t.Setenv("BUILDXHIRE_POLICY_FILE", policyPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Session.QuestionCap != 6 {
		t.Fatalf("policy question cap not applied: %d", cfg.Session.QuestionCap)
	}
	if cfg.Session.AdvanceDelay != 500*time.Millisecond {
		t.Fatalf("policy advance delay not applied: %s", cfg.Session.AdvanceDelay)
	}
}

func TestLoadMissingPolicyFileIsFine(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BUILDXHIRE_POLICY_FILE", "/nowhere/policy.yaml")

	if _, err := Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
}

func TestLoadMalformedPolicyFileFails(t *testing.T) {
	home := t.TempDir()
	policyPath := filepath.Join(home, "policy.yaml")
	if err := os.WriteFile(policyPath, []byte(":\n\t-broken"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("BUILDXHIRE_POLICY_FILE", policyPath)

	if _, err := Load(); err == nil {
		t.Fatalf("expected malformed policy error")
	}
}
