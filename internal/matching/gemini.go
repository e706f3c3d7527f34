package matching

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mediplus/clinic-platform/internal/doctors"
)

// GeminiMatcher implements Embedder and Picker using Google's Gemini API.
type GeminiMatcher struct {
	client       *genai.Client
	modelID      string
	embedModelID string
}

// NewGeminiMatcher creates a Gemini-backed matcher.
func NewGeminiMatcher(ctx context.Context, apiKey, modelID, embedModelID string) (*GeminiMatcher, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("matching: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	if strings.TrimSpace(embedModelID) == "" {
		embedModelID = "text-embedding-004"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("matching: failed to create gemini client: %w", err)
	}
	return &GeminiMatcher{
		client:       client,
		modelID:      modelID,
		embedModelID: embedModelID,
	}, nil
}

// EmbedText embeds free text with the configured embedding model.
func (m *GeminiMatcher) EmbedText(ctx context.Context, text string) ([]float32, error) {
	em := m.client.EmbeddingModel(m.embedModelID)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("matching: gemini embedding failed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("matching: gemini returned empty embedding")
	}
	return res.Embedding.Values, nil
}

// Pick asks the model to choose the best candidate for the symptoms. The
// model answers with a 1-based number and a short justification.
func (m *GeminiMatcher) Pick(ctx context.Context, symptoms string, candidates []doctors.Doctor) (int, string, error) {
	if len(candidates) == 0 {
		return -1, "", errors.New("matching: no candidates to pick from")
	}

	var prompt strings.Builder
	prompt.WriteString("A patient describes their symptoms as: ")
	prompt.WriteString(strconv.Quote(symptoms))
	prompt.WriteString("\n\nChoose the single most suitable doctor from this list:\n")
	for i, d := range candidates {
		fmt.Fprintf(&prompt, "%d. %s, specialty %s", i+1, d.FullName, d.Specialty)
		if len(d.Keywords) > 0 {
			fmt.Fprintf(&prompt, " (treats: %s)", strings.Join(d.Keywords, ", "))
		}
		prompt.WriteString("\n")
	}
	prompt.WriteString("\nAnswer with the number, then a dash, then one short sentence explaining why.\nExample: 2 - closest specialty match for these symptoms.")

	model := m.client.GenerativeModel(m.modelID)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return -1, "", fmt.Errorf("matching: gemini pick failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return -1, "", errors.New("matching: gemini returned empty content")
	}

	var answer strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			answer.WriteString(string(text))
		}
	}
	return parsePick(answer.String(), len(candidates))
}

// parsePick extracts the 1-based choice and the trailing reason from a
// "N - reason" answer.
func parsePick(answer string, n int) (int, string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return -1, "", errors.New("matching: empty pick answer")
	}

	numEnd := 0
	for numEnd < len(answer) && answer[numEnd] >= '0' && answer[numEnd] <= '9' {
		numEnd++
	}
	if numEnd == 0 {
		return -1, "", fmt.Errorf("matching: unparseable pick answer %q", answer)
	}
	choice, err := strconv.Atoi(answer[:numEnd])
	if err != nil || choice < 1 || choice > n {
		return -1, "", fmt.Errorf("matching: pick %q out of range 1..%d", answer[:numEnd], n)
	}

	reason := strings.TrimSpace(strings.TrimLeft(answer[numEnd:], " -:."))
	return choice - 1, reason, nil
}

var (
	_ Embedder = (*GeminiMatcher)(nil)
	_ Picker   = (*GeminiMatcher)(nil)
)
