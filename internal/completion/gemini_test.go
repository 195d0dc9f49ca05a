package completion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/edgard/schoolbot/internal/prompt"
)

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func TestGeminiCompleteMapsRoles(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{resp: textResponse(" Mondays and Thursdays. ")}
	client := newGeminiClient(gen, GeminiConfig{Temperature: 0.6, MaxTokens: 500, Timeout: time.Second})

	got, err := client.Complete(context.Background(), []prompt.Message{
		{Role: prompt.RoleSystem, Text: "system text"},
		{Role: prompt.RoleUser, Text: "Hi"},
		{Role: prompt.RoleAssistant, Text: "Hello!"},
		{Role: prompt.RoleUser, Text: "When are classes?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mondays and Thursdays.", got)

	assert.Equal(t, "gemini-2.0-flash", gen.model)
	require.Len(t, gen.contents, 3)
	assert.Equal(t, genai.RoleUser, gen.contents[0].Role)
	assert.Equal(t, genai.RoleModel, gen.contents[1].Role)
	assert.Equal(t, "When are classes?", gen.contents[2].Parts[0].Text)

	require.NotNil(t, gen.config.SystemInstruction)
	assert.Equal(t, "system text", gen.config.SystemInstruction.Parts[0].Text)
	require.NotNil(t, gen.config.Temperature)
	assert.InDelta(t, 0.6, *gen.config.Temperature, 1e-6)
	assert.Equal(t, int32(500), gen.config.MaxOutputTokens)
}

func TestGeminiCompleteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		gen     *fakeGenerator
		wantErr error
	}{
		{
			name:    "api error",
			gen:     &fakeGenerator{err: errors.New("quota exceeded")},
			wantErr: nil,
		},
		{
			name:    "empty text",
			gen:     &fakeGenerator{resp: textResponse("   ")},
			wantErr: ErrEmptyResponse,
		},
		{
			name: "blocked prompt",
			gen: &fakeGenerator{resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newGeminiClient(tt.gen, GeminiConfig{Model: "gemini-test"})
			_, err := client.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Text: "q"}})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGeminiCompleteIgnoresFeedbackWithoutBlockReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reason genai.BlockedReason
	}{
		{name: "empty reason", reason: ""},
		{name: "unspecified reason", reason: genai.BlockedReasonUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := textResponse("We are open on Saturdays.")
			resp.PromptFeedback = &genai.GenerateContentResponsePromptFeedback{
				BlockReason:   tt.reason,
				SafetyRatings: []*genai.SafetyRating{{Category: genai.HarmCategoryHarassment}},
			}
			client := newGeminiClient(&fakeGenerator{resp: resp}, GeminiConfig{Model: "gemini-test"})

			got, err := client.Complete(context.Background(), []prompt.Message{{Role: prompt.RoleUser, Text: "Saturdays?"}})
			require.NoError(t, err)
			assert.Equal(t, "We are open on Saturdays.", got)
		})
	}
}
