package matching

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/mediplus/clinic-platform/internal/doctors"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// topCandidates is how many similarity hits are offered to the picker.
const topCandidates = 3

// ErrNoDoctors means the directory is empty or nothing embeds.
var ErrNoDoctors = errors.New("matching: no doctors available")

// Directory serves the current doctor index.
type Directory interface {
	Snapshot() []doctors.Profile
}

// Embedder turns the symptom description into a vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Picker chooses the best candidate from a similarity-ranked shortlist
// and explains the choice. Optional; on error the engine falls back to
// the top-scored candidate.
type Picker interface {
	Pick(ctx context.Context, symptoms string, candidates []doctors.Doctor) (choice int, reason string, err error)
}

// Match is the outcome of one recommendation.
type Match struct {
	Doctor doctors.Doctor `json:"doctor"`
	Score  float64        `json:"score"`
	Reason string         `json:"reason,omitempty"`
}

// Engine ranks doctors against a symptom description by cosine
// similarity, then lets the picker choose among the shortlist.
type Engine struct {
	directory Directory
	embedder  Embedder
	picker    Picker
	logger    *logging.Logger
}

// NewEngine constructs a matching engine. picker may be nil.
func NewEngine(directory Directory, embedder Embedder, picker Picker, logger *logging.Logger) *Engine {
	if directory == nil {
		panic("matching: directory required")
	}
	if embedder == nil {
		panic("matching: embedder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{directory: directory, embedder: embedder, picker: picker, logger: logger}
}

type scored struct {
	profile doctors.Profile
	score   float64
}

// Match recommends one doctor for the symptom description.
func (e *Engine) Match(ctx context.Context, symptoms string) (*Match, error) {
	profiles := e.directory.Snapshot()
	if len(profiles) == 0 {
		return nil, ErrNoDoctors
	}

	query, err := e.embedder.EmbedText(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	ranked := make([]scored, 0, len(profiles))
	for _, p := range profiles {
		ranked = append(ranked, scored{profile: p, score: cosine(query, p.Vector)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topCandidates {
		ranked = ranked[:topCandidates]
	}

	choice, reason := 0, ""
	if e.picker != nil {
		candidates := make([]doctors.Doctor, len(ranked))
		for i, r := range ranked {
			candidates[i] = r.profile.Doctor
		}
		picked, why, err := e.picker.Pick(ctx, symptoms, candidates)
		if err != nil || picked < 0 || picked >= len(ranked) {
			e.logger.Error("picker failed, using top similarity hit", "error", err)
		} else {
			choice, reason = picked, why
		}
	}

	return &Match{
		Doctor: ranked[choice].profile.Doctor,
		Score:  ranked[choice].score,
		Reason: reason,
	}, nil
}

// cosine returns the cosine similarity of two vectors; 0 when either is
// zero-length or they disagree on dimension.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
