package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
)

// Service is the TUI-facing subset of the pipeline.
type Service interface {
	Query(ctx context.Context, question string) (domain.QueryResponse, error)
	DescribeIndex() (domain.IndexInfo, error)
}

const helpText = `Ask any question about the loaded document.

Commands:
  info            show what the index was built from
  help            show this help
  quit, exit, q   leave

Scroll the answer with PgUp/PgDn.`

type answerMsg struct {
	resp domain.QueryResponse
	err  error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx      context.Context
	service  Service
	input    textinput.Model
	viewport viewport.Model
	content  string
	status   string
	busy     bool
	ready    bool
	width    int
}

// New creates a chat model. ctx bounds every query started from the screen.
func New(ctx context.Context, service Service) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	status := "Ready. Type 'help' for commands."
	content := helpText
	if info, err := service.DescribeIndex(); err == nil {
		content = renderInfo(info) + "\n\n" + helpText
	}

	return Model{
		ctx:      ctx,
		service:  service,
		input:    ti,
		viewport: viewport.New(0, 0),
		content:  content,
		status:   status,
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input box, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.wrap(m.content))
		return m, nil

	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%d sources for %q", len(msg.resp.Sources), msg.resp.Question)
		m.setContent(renderAnswer(msg.resp))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	switch strings.ToLower(q) {
	case "":
		return m, nil
	case "quit", "exit", "q":
		return m, tea.Quit
	case "help":
		m.setContent(helpText)
		m.status = "Help"
		return m, nil
	case "info":
		info, err := m.service.DescribeIndex()
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		m.setContent(renderInfo(info))
		m.status = "Document info"
		return m, nil
	}

	if m.busy {
		m.status = "Still answering the previous question..."
		return m, nil
	}
	m.busy = true
	m.status = "Processing your question..."

	ctx, service := m.ctx, m.service
	return m, func() tea.Msg {
		resp, err := service.Query(ctx, q)
		return answerMsg{resp: resp, err: err}
	}
}

func (m *Model) setContent(s string) {
	m.content = s
	m.viewport.SetContent(m.wrap(s))
	m.viewport.GotoTop()
}

func (m Model) wrap(s string) string {
	if m.width <= 4 {
		return s
	}
	return lipgloss.NewStyle().Width(m.width - 4).Render(s)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docqa")
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + results + "\n" + input + "\n" + status
}

func renderAnswer(resp domain.QueryResponse) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Question: "))
	b.WriteString(resp.Question)
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Answer"))
	b.WriteString("\n")
	b.WriteString(resp.Answer)

	if len(resp.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render(fmt.Sprintf("Sources (%d)", len(resp.Sources))))
		for _, s := range resp.Sources {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("%d. page %d  score=%.3f  ", s.Rank, s.Page, s.Score)))
			b.WriteString(Preview(s.Content, 100))
		}
	}
	return b.String()
}

func renderInfo(info domain.IndexInfo) string {
	return strings.Join([]string{
		labelStyle.Render("Document info"),
		fmt.Sprintf("File:       %s", info.SourcePath),
		fmt.Sprintf("Chunks:     %d", info.TotalChunks),
		fmt.Sprintf("Chunk size: %d (overlap %d)", info.ChunkSize, info.ChunkOverlap),
		fmt.Sprintf("Embeddings: %s, %d dimensions", info.EmbeddingModel, info.Dimension),
	}, "\n")
}

// Preview flattens whitespace and cuts s to n characters, marking the cut.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
