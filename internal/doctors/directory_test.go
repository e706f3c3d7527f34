package doctors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

type staticLister struct {
	list []Doctor
	err  error
}

func (s *staticLister) List(context.Context) ([]Doctor, error) {
	return s.list, s.err
}

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func TestDirectoryRefresh(t *testing.T) {
	cardio := Doctor{ID: uuid.New(), FullName: "Dr. Rahman", Specialty: "Cardiology", Keywords: []string{"chest pain"}}
	derm := Doctor{ID: uuid.New(), FullName: "Dr. Sultana", Specialty: "Dermatology"}
	lister := &staticLister{list: []Doctor{cardio, derm}}
	embedder := &stubEmbedder{}
	dir := NewDirectory(lister, embedder, logging.New("error"))

	if got := dir.Snapshot(); len(got) != 0 {
		t.Fatalf("fresh directory has %d profiles", len(got))
	}

	if err := dir.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	profiles := dir.Snapshot()
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}
	if profiles[0].Doctor.ID != cardio.ID {
		t.Errorf("first profile = %s", profiles[0].Doctor.FullName)
	}
	if embedder.calls != 2 {
		t.Errorf("embedder calls = %d, want 2", embedder.calls)
	}
}

func TestDirectoryRefreshSkipsFailedEmbedding(t *testing.T) {
	lister := &staticLister{list: []Doctor{
		{ID: uuid.New(), FullName: "Dr. Rahman", Specialty: "Cardiology"},
	}}
	embedder := &stubEmbedder{err: errors.New("quota exceeded")}
	dir := NewDirectory(lister, embedder, logging.New("error"))

	if err := dir.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := dir.Snapshot(); len(got) != 0 {
		t.Fatalf("profiles = %d, want 0 after embed failure", len(got))
	}
}

func TestDirectoryRefreshKeepsOldIndexOnStoreError(t *testing.T) {
	lister := &staticLister{list: []Doctor{
		{ID: uuid.New(), FullName: "Dr. Rahman", Specialty: "Cardiology"},
	}}
	dir := NewDirectory(lister, &stubEmbedder{}, logging.New("error"))
	if err := dir.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	lister.err = errors.New("db down")
	if err := dir.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if got := dir.Snapshot(); len(got) != 1 {
		t.Fatalf("profiles = %d, want old index kept", len(got))
	}
}

func TestMatchText(t *testing.T) {
	d := Doctor{Specialty: "Cardiology", Sector: "Heart", Keywords: []string{"chest pain", "palpitations"}}
	want := "Cardiology, Heart, chest pain, palpitations"
	if got := d.MatchText(); got != want {
		t.Fatalf("MatchText = %q, want %q", got, want)
	}

	empty := Doctor{}
	if got := empty.MatchText(); got != "" {
		t.Fatalf("MatchText on empty profile = %q", got)
	}
}
