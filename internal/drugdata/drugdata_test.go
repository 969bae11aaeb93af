package drugdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medication-tracker-server/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/sashabaranov/go-openai"
)

func TestSimulatedCheckerExtremes(t *testing.T) {
	ctx := context.Background()

	always := NewSimulatedChecker(1, 7)
	never := NewSimulatedChecker(0, 7)
	for i := 0; i < 50; i++ {
		got, err := always.Check(ctx, "Warfarin", "Aspirin")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := InteractionResult{
			Found:       true,
			Severity:    models.SeverityModerate,
			Description: "Potential interaction between Warfarin and Aspirin. Monitor for increased side effects.",
		}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Fatalf("Bad result; diff (-got +want)\n%s", diff)
		}

		got, err = never.Check(ctx, "Warfarin", "Aspirin")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if got.Found {
			t.Fatalf("Checker with probability 0 found an interaction")
		}
	}
}

func TestSimulatedCheckerSeeded(t *testing.T) {
	ctx := context.Background()
	a := NewSimulatedChecker(0.5, 42)
	b := NewSimulatedChecker(0.5, 42)
	for i := 0; i < 20; i++ {
		ra, _ := a.Check(ctx, "x", "y")
		rb, _ := b.Check(ctx, "x", "y")
		if ra.Found != rb.Found {
			t.Fatalf("Checkers with the same seed diverged at roll %d", i)
		}
	}
}

func TestSimulatedCheckerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewSimulatedChecker(1, 1).Check(ctx, "x", "y"); err == nil {
		t.Errorf("Check on a cancelled context succeeded")
	}
}

func TestSimulatedLabels(t *testing.T) {
	got, err := SimulatedLabels{}.Lookup(context.Background(), "Lisinopril")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := &Label{
		Indications: []string{"Treatment of conditions related to Lisinopril"},
		SideEffects: []string{"Nausea", "Dizziness", "Headache"},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad label; diff (-got +want)\n%s", diff)
	}
}

func TestOpenAISummarizer(t *testing.T) {
	var gotRequest openai.ChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  Lowers blood sugar.  "},
			}},
		})
	}))
	defer server.Close()

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	s := NewOpenAISummarizerWithConfig(config, "")

	label := &Label{Indications: []string{"Type 2 diabetes"}, SideEffects: []string{"Nausea"}}
	got, err := s.Summarize(context.Background(), "Metformin", label)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "Lowers blood sugar." {
		t.Errorf("Bad summary; got %q", got)
	}
	if gotRequest.Model != openai.GPT4o || gotRequest.MaxTokens != 150 {
		t.Errorf("Bad request settings; got model %q max tokens %d", gotRequest.Model, gotRequest.MaxTokens)
	}
	if len(gotRequest.Messages) != 2 || !strings.Contains(gotRequest.Messages[1].Content, "Type 2 diabetes") {
		t.Errorf("Prompt is missing the label; got %+v", gotRequest.Messages)
	}
}

func TestOpenAISummarizerNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	s := NewOpenAISummarizerWithConfig(config, openai.GPT4oMini)

	if _, err := s.Summarize(context.Background(), "Metformin", &Label{}); err == nil {
		t.Errorf("Summarize with no choices succeeded")
	}
}

func TestStaticSummarizer(t *testing.T) {
	got, err := StaticSummarizer{}.Summarize(context.Background(), "anything", nil)
	if err != nil || got != GenericSummary {
		t.Errorf("Got (%q, %v), want the generic summary", got, err)
	}
}
