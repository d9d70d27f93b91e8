package usecase

import "testing"

func TestComposePromptJoinsInputAndDocument(t *testing.T) {
	got := ComposePrompt("Summarize", "Hello world")
	want := "Summarize\n\n---\n\nHello world"
	if got != want {
		t.Fatalf("ComposePrompt() = %q, want %q", got, want)
	}
}

func TestComposePromptKeepsSeparatorWithoutDocument(t *testing.T) {
	got := ComposePrompt("Summarize", "")
	want := "Summarize\n\n---\n\n"
	if got != want {
		t.Fatalf("ComposePrompt() = %q, want %q", got, want)
	}
}

func TestComposePromptIsDeterministic(t *testing.T) {
	first := ComposePrompt("question", "context")
	second := ComposePrompt("question", "context")
	if first != second {
		t.Fatalf("repeated calls differ: %q vs %q", first, second)
	}
}
