package matching

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/doctors"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

type staticDirectory struct {
	profiles []doctors.Profile
}

func (d *staticDirectory) Snapshot() []doctors.Profile { return d.profiles }

type vectorEmbedder struct {
	vector []float32
	err    error
}

func (e *vectorEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	return e.vector, e.err
}

type staticPicker struct {
	choice int
	reason string
	err    error
	saw    []doctors.Doctor
}

func (p *staticPicker) Pick(_ context.Context, _ string, candidates []doctors.Doctor) (int, string, error) {
	p.saw = candidates
	return p.choice, p.reason, p.err
}

func profile(name, specialty string, vec []float32) doctors.Profile {
	return doctors.Profile{
		Doctor: doctors.Doctor{ID: uuid.New(), FullName: name, Specialty: specialty},
		Vector: vec,
	}
}

func TestMatchRanksBySimilarity(t *testing.T) {
	dir := &staticDirectory{profiles: []doctors.Profile{
		profile("Dr. Skin", "Dermatology", []float32{0, 1, 0}),
		profile("Dr. Heart", "Cardiology", []float32{1, 0, 0}),
		profile("Dr. Bone", "Orthopedics", []float32{0, 0, 1}),
	}}
	engine := NewEngine(dir, &vectorEmbedder{vector: []float32{0.9, 0.1, 0}}, nil, logging.New("error"))

	m, err := engine.Match(context.Background(), "chest pain")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m.Doctor.FullName != "Dr. Heart" {
		t.Fatalf("matched %s, want Dr. Heart", m.Doctor.FullName)
	}
	if m.Score <= 0 {
		t.Fatalf("score = %f, want positive", m.Score)
	}
}

func TestMatchUsesPickerChoice(t *testing.T) {
	dir := &staticDirectory{profiles: []doctors.Profile{
		profile("Dr. A", "Cardiology", []float32{1, 0}),
		profile("Dr. B", "Medicine", []float32{0.9, 0.1}),
	}}
	picker := &staticPicker{choice: 1, reason: "broader fit"}
	engine := NewEngine(dir, &vectorEmbedder{vector: []float32{1, 0}}, picker, logging.New("error"))

	m, err := engine.Match(context.Background(), "fatigue")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m.Doctor.FullName != "Dr. B" {
		t.Fatalf("matched %s, want picker's choice Dr. B", m.Doctor.FullName)
	}
	if m.Reason != "broader fit" {
		t.Errorf("reason = %q", m.Reason)
	}
	if len(picker.saw) != 2 {
		t.Errorf("picker saw %d candidates, want 2", len(picker.saw))
	}
}

func TestMatchFallsBackWhenPickerFails(t *testing.T) {
	dir := &staticDirectory{profiles: []doctors.Profile{
		profile("Dr. Top", "Cardiology", []float32{1, 0}),
		profile("Dr. Other", "Medicine", []float32{0, 1}),
	}}
	picker := &staticPicker{err: errors.New("model timeout")}
	engine := NewEngine(dir, &vectorEmbedder{vector: []float32{1, 0}}, picker, logging.New("error"))

	m, err := engine.Match(context.Background(), "chest pain")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if m.Doctor.FullName != "Dr. Top" {
		t.Fatalf("matched %s, want similarity leader", m.Doctor.FullName)
	}
	if m.Reason != "" {
		t.Errorf("reason = %q, want empty on fallback", m.Reason)
	}
}

func TestMatchShortlistsTopThree(t *testing.T) {
	dir := &staticDirectory{profiles: []doctors.Profile{
		profile("Dr. 1", "A", []float32{1, 0}),
		profile("Dr. 2", "B", []float32{0.9, 0.1}),
		profile("Dr. 3", "C", []float32{0.8, 0.2}),
		profile("Dr. 4", "D", []float32{0, 1}),
	}}
	picker := &staticPicker{choice: 0}
	engine := NewEngine(dir, &vectorEmbedder{vector: []float32{1, 0}}, picker, logging.New("error"))

	if _, err := engine.Match(context.Background(), "x"); err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(picker.saw) != 3 {
		t.Fatalf("picker saw %d candidates, want 3", len(picker.saw))
	}
	for _, d := range picker.saw {
		if d.FullName == "Dr. 4" {
			t.Fatal("least similar doctor made the shortlist")
		}
	}
}

func TestMatchEmptyDirectory(t *testing.T) {
	engine := NewEngine(&staticDirectory{}, &vectorEmbedder{vector: []float32{1}}, nil, logging.New("error"))
	if _, err := engine.Match(context.Background(), "x"); !errors.Is(err, ErrNoDoctors) {
		t.Fatalf("err = %v, want ErrNoDoctors", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"dimension mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("cosine = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestParsePick(t *testing.T) {
	tests := []struct {
		answer     string
		n          int
		wantChoice int
		wantReason string
		wantErr    bool
	}{
		{"2 - closest specialty match", 3, 1, "closest specialty match", false},
		{"1", 3, 0, "", false},
		{"3: deep expertise", 3, 2, "deep expertise", false},
		{"specialist", 3, -1, "", true},
		{"4 - out of range", 3, -1, "", true},
		{"", 3, -1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			choice, reason, err := parsePick(tt.answer, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePick: %v", err)
			}
			if choice != tt.wantChoice || reason != tt.wantReason {
				t.Fatalf("= (%d, %q), want (%d, %q)", choice, reason, tt.wantChoice, tt.wantReason)
			}
		})
	}
}
