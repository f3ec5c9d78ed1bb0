package speech

import (
	"strings"
	"sync"

	"github.com/Shivamtawar/buildxhire/internal/domain"
)

// aggregator folds recognition events into one cumulative transcript.
// Finalized segments accumulate; the latest partial rides on the end until
// a final replaces it.
type aggregator struct {
	mu      sync.Mutex
	finals  []string
	partial string
}

func newAggregator() *aggregator {
	return &aggregator{}
}

func (a *aggregator) Add(event domain.TranscriptEvent) {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if event.Kind == domain.TranscriptKindFinal {
		a.finals = append(a.finals, text)
		a.partial = ""
		return
	}
	a.partial = text
}

// Cumulative returns everything heard so far, finals first, the current
// partial last.
func (a *aggregator) Cumulative() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined := strings.Join(a.finals, " ")
	if a.partial == "" {
		return joined
	}
	if joined == "" {
		return a.partial
	}
	if strings.HasSuffix(joined, a.partial) {
		return joined
	}
	return joined + " " + a.partial
}
