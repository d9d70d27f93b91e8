package usecase

// promptSeparator sits between the user input and the retained document
// text. It is emitted even when no document text is retained, so the
// composed prompt has a stable shape.
const promptSeparator = "\n\n---\n\n"

// ComposePrompt builds the outgoing prompt from the latest user input and
// the currently retained document text. Pure function; no length limiting
// is applied here, the remote endpoint's own limits are the backstop.
func ComposePrompt(userInput, documentText string) string {
	return userInput + promptSeparator + documentText
}
