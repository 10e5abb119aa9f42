package prompt

import "strings"

// ChatPrompt builds a free-form exchange. An empty system instruction
// falls back to the companion one.
func ChatPrompt(system, message string) Prompt {
	system = strings.TrimSpace(system)
	if system == "" {
		system = CompanionSystemPrompt
	}
	return Prompt{System: system, User: strings.TrimSpace(message)}
}
