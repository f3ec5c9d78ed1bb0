// Package report writes interview artifacts to disk as JSON files so
// results survive the session that produced them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

// Exporter persists final reports and match analyses under a single
// directory, one file per artifact.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// DefaultDir resolves the export directory under the user's home.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, "buildxhire-reports"), nil
}

type interviewArtifact struct {
	SessionID   string             `json:"session_id"`
	CandidateID string             `json:"candidate_id,omitempty"`
	ExportedAt  time.Time          `json:"exported_at"`
	Report      domain.FinalReport `json:"report"`
}

type matchArtifact struct {
	ID         string             `json:"id"`
	ExportedAt time.Time          `json:"exported_at"`
	Match      domain.MatchReport `json:"match"`
}

// SaveInterview writes the final report keyed by its session, overwriting a
// previous export of the same session. Returns the file path.
func (e *Exporter) SaveInterview(sessionID, candidateID string, report domain.FinalReport) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: session id", domain.ErrValidation)
	}

	artifact := interviewArtifact{
		SessionID:   sessionID,
		CandidateID: candidateID,
		ExportedAt:  time.Now().UTC(),
		Report:      report,
	}
	return e.write(fmt.Sprintf("interview_%s.json", sanitize(sessionID)), artifact)
}

// SaveMatch writes a match analysis under a fresh id, so repeated analyses
// of the same job description never clobber each other.
func (e *Exporter) SaveMatch(match domain.MatchReport) (string, error) {
	artifact := matchArtifact{
		ID:         uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Match:      match,
	}
	return e.write(fmt.Sprintf("match_%s.json", artifact.ID), artifact)
}

// SaveRewrite writes a rewritten resume as plain text under a fresh id, so
// the candidate can paste or upload it elsewhere. Returns the file path.
func (e *Exporter) SaveRewrite(rewritten string) (string, error) {
	if strings.TrimSpace(rewritten) == "" {
		return "", fmt.Errorf("%w: rewritten resume", domain.ErrValidation)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("rewrite_%s.txt", uuid.NewString()))
	if err := os.WriteFile(path, []byte(rewritten+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write rewritten resume: %w", err)
	}
	return path, nil
}

// List returns the exported artifact file names, newest first.
func (e *Exporter) List() ([]string, error) {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read export directory: %w", err)
	}

	type dated struct {
		name    string
		modTime time.Time
	}
	var files []dated
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".json") && !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, dated{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

func (e *Exporter) write(name string, artifact any) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// sanitize keeps session ids from escaping the export directory or
// producing invalid file names.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, id)
}
