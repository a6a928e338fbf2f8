package domain

import (
	"strings"
	"testing"
)

func TestPrompts(t *testing.T) {
	if AnalysisPrompt("") != DefaultAnalysisPrompt {
		t.Error("empty question should use the default prompt")
	}
	if AnalysisPrompt("What color is it?") != "What color is it?" {
		t.Error("question should be used verbatim")
	}

	p := AnswerSystemPrompt("Image analysis: red nebula\n\n")
	if !strings.Contains(p, "APOD) and can analyze space images. Image analysis: red nebula\n\nAnswer the user's question") {
		t.Errorf("context not folded into system prompt: %q", p)
	}
}
