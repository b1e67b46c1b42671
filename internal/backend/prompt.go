package backend

import (
	"errors"
	"strings"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// DefaultSystemPrompt steers chat answers toward concrete code work. A
// caller-supplied system message replaces it for that request.
const DefaultSystemPrompt = "You are a code assistant. When given code:\n" +
	"- Read it carefully FIRST\n" +
	"- If asked to explain: explain what the code ACTUALLY does (don't invent problems)\n" +
	"- If asked to modify: return the COMPLETE modified code in ```language blocks\n" +
	"- Keep the same structure, class names, and method names\n" +
	"- Be accurate and concise"

// completionInstruction is prepended for Gemini-style completions, which
// otherwise tend to wrap code in commentary and markdown.
const completionInstruction = "Complete the following code. Return ONLY the code continuation, " +
	"no explanations, no markdown, no backticks:\n\n"

var explainKeywords = []string{"explain", "what", "how", "why", "describe"}

// injectFileContext prepends the assembled file block to a user message.
// Messages that read like a question get the block framed as background;
// everything else is framed as code to change, with an explicit ask for the
// complete result.
func injectFileContext(content, block string) string {
	lower := strings.ToLower(content)
	for _, kw := range explainKeywords {
		if strings.Contains(lower, kw) {
			return block + "\n\nQuestion: " + content
		}
	}
	return block + "\n\nModify the above code to: " + content + "\n\nReturn the complete modified code."
}

// normalizeMessages applies the two rules shared by every backend variant:
// the last system message overrides the default system prompt, and the file
// context block (when non-empty) is injected into the first user message
// only. The returned turns contain no system messages.
func normalizeMessages(messages []domain.ChatMessage, contextBlock, defaultSystem string) (string, []domain.ChatMessage, error) {
	if len(messages) == 0 {
		return "", nil, errors.New("chat requires at least one message")
	}
	system := defaultSystem
	injected := false
	turns := make([]domain.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			system = msg.Content
			continue
		}
		content := msg.Content
		if msg.Role == domain.RoleUser && contextBlock != "" && !injected {
			content = injectFileContext(content, contextBlock)
			injected = true
		}
		turns = append(turns, domain.ChatMessage{Role: msg.Role, Content: content})
	}
	if len(turns) == 0 {
		return "", nil, errors.New("chat requires at least one user or assistant message")
	}
	return system, turns, nil
}

// flattenTranscript renders the conversation as the flat prompt the local
// inference server expects, ending with an open Assistant turn.
func flattenTranscript(system string, turns []domain.ChatMessage) string {
	sections := make([]string, 0, len(turns)+2)
	sections = append(sections, "System: "+system)
	for _, turn := range turns {
		speaker := "User"
		if turn.Role == domain.RoleAssistant {
			speaker = "Assistant"
		}
		sections = append(sections, strings.TrimSpace(speaker+": "+turn.Content))
	}
	sections = append(sections, "Assistant:")
	return strings.Join(sections, "\n\n")
}
