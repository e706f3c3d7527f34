package matching

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/doctors"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

func TestRecommendEndpoint(t *testing.T) {
	dir := &staticDirectory{profiles: []doctors.Profile{{
		Doctor: doctors.Doctor{ID: uuid.New(), FullName: "Dr. Heart", Specialty: "Cardiology"},
		Vector: []float32{1, 0},
	}}}
	engine := NewEngine(dir, &countingEmbedder{vector: []float32{1, 0}}, nil, logging.New("error"))
	h := NewHandler(NewService(engine, nil, nil, nil, logging.New("error")), logging.New("error"))

	body := []byte(`{"symptoms":"chest pain and shortness of breath"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/recommend", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp Recommendation
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Doctor.FullName != "Dr. Heart" {
		t.Fatalf("doctor = %q", resp.Doctor.FullName)
	}
}

func TestRecommendEndpointValidation(t *testing.T) {
	dir := &staticDirectory{}
	engine := NewEngine(dir, &countingEmbedder{vector: []float32{1}}, nil, logging.New("error"))
	h := NewHandler(NewService(engine, nil, nil, nil, logging.New("error")), logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", bytes.NewReader([]byte(`{"symptoms":"  "}`)))
	rec := httptest.NewRecorder()
	h.Recommend(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank symptoms: status = %d, want 400", rec.Code)
	}

	// Empty directory: nothing to recommend.
	req = httptest.NewRequest(http.MethodPost, "/api/recommend", bytes.NewReader([]byte(`{"symptoms":"chest pain"}`)))
	rec = httptest.NewRecorder()
	h.Recommend(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("empty directory: status = %d, want 503", rec.Code)
	}
}
