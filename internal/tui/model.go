package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/siddarthal/AiHackathon/internal/domain"
)

// AssistantPort is the console-facing subset of the assistant service.
type AssistantPort interface {
	Search(query string, topK int) ([]domain.SearchResult, error)
	AnswerQuery(ctx context.Context, query string) (string, error)
}

// answerMsg carries an asynchronously generated answer back to Update.
type answerMsg struct {
	query  string
	answer string
	err    error
}

// Model is the Bubble Tea model for the interactive query console.
type Model struct {
	assistant AssistantPort
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.SearchResult
	answer    string
	digest    string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

func New(assistant AssistantPort, digest string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the indexed code and docs"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		assistant: assistant,
		input:     ti,
		viewport:  vp,
		digest:    digest,
		status:    "Index loaded. Type a query and press Enter.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+digest, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case answerMsg:
		if msg.query != m.lastQuery {
			return m, nil
		}
		if msg.err != nil {
			m.status = "Retrieval only, no backend: " + msg.err.Error()
		} else {
			m.answer = msg.answer
			m.status = fmt.Sprintf("Answered %q", msg.query)
		}
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			query := strings.TrimSpace(m.input.Value())
			if query == "" {
				break
			}
			results, err := m.assistant.Search(query, 10)
			if err != nil {
				m.status = "Error: " + err.Error()
				m.results = nil
				m.answer = ""
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
			m.results = results
			m.answer = ""
			m.cursor = 0
			m.lastQuery = query
			m.status = fmt.Sprintf("Retrieved %d chunks for %q, generating answer...", len(results), query)
			m.viewport.SetContent(m.renderCurrentResult())
			return m, m.generateAnswer(query)
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// generateAnswer runs the backend call off the update loop so typing stays
// responsive while the model generates.
func (m Model) generateAnswer(query string) tea.Cmd {
	assistant := m.assistant
	return func() tea.Msg {
		answer, err := assistant.AnswerQuery(context.Background(), query)
		return answerMsg{query: query, answer: answer, err: err}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Code Assistant Console")
	digest := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.digest)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + digest + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	if m.answer != "" {
		b.WriteString(answerStyle.Render("Answer"))
		b.WriteString("\n")
		b.WriteString(m.answer)
		b.WriteString("\n\n")
	}
	r := m.results[m.cursor]
	fmt.Fprintf(&b, "Chunk %d/%d  %s  score=%.3f\n\n", m.cursor+1, len(m.results), r.Chunk.Source, r.Score)
	b.WriteString(highlightBestSentence(r.Chunk.Text, m.lastQuery))
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasizes the sentence with the largest token
// overlap against the query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx, bestScore := 0, -1
	for i, sent := range sentences {
		if score := overlap(queryTokens, sent); score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func overlap(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	for tok := range tokenSet(sentence) {
		if _, ok := queryTokens[tok]; ok {
			score++
		}
	}
	return score
}
