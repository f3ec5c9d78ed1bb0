// Package bootstrap assembles the runtime dependency graph.
package bootstrap

import (
	"github.com/Shivamtawar/buildxhire/internal/api"
	"github.com/Shivamtawar/buildxhire/internal/audio"
	"github.com/Shivamtawar/buildxhire/internal/config"
	"github.com/Shivamtawar/buildxhire/internal/extract"
	"github.com/Shivamtawar/buildxhire/internal/persistence"
	"github.com/Shivamtawar/buildxhire/internal/ports"
	"github.com/Shivamtawar/buildxhire/internal/providers/deepgram"
	"github.com/Shivamtawar/buildxhire/internal/report"
	"github.com/Shivamtawar/buildxhire/internal/rules"
	"github.com/Shivamtawar/buildxhire/internal/speech"
	"github.com/Shivamtawar/buildxhire/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Extractor  *extract.Extractor
	Exporter   *report.Exporter
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	rulesEngine, err := rules.NewEngine(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		return Services{}, err
	}

	snapshotPath := cfg.Session.SnapshotPath
	if snapshotPath == "" {
		snapshotPath, err = persistence.DefaultPath()
		if err != nil {
			return Services{}, err
		}
	}

	dictation := speech.NewDictation(
		audio.NewMicCapture(cfg.Audio.RecorderCommand),
		deepgram.NewRecognizer(deepgram.Config{
			APIKey:      cfg.Deepgram.APIKey,
			APIBaseURL:  cfg.Deepgram.APIBaseURL,
			Model:       cfg.Deepgram.Model,
			Language:    cfg.Deepgram.Language,
			SmartFormat: cfg.Deepgram.SmartFormat,
		}),
		rulesEngine,
		speech.DictationConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Recognition: ports.RecognitionConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize: cfg.Audio.ChunkSize,
		},
	)

	controller := usecase.NewSessionController(
		api.NewClient(cfg.API.BaseURL, cfg.API.Timeout),
		usecase.NewSessionState(persistence.NewFileStore(snapshotPath)),
		dictation,
		speech.NewSynthesizer(cfg.Speech.SynthesisCommand),
		eventSink,
		usecase.Config{
			QuestionCap:  cfg.Session.QuestionCap,
			AdvanceDelay: cfg.Session.AdvanceDelay,
		},
	)

	return Services{
		Controller: controller,
		Extractor:  extract.New(),
		Exporter:   report.NewExporter(cfg.Reports.Dir),
		Config:     cfg,
	}, nil
}
