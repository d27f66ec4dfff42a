package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"storypals/internal/chatclient"
	"storypals/internal/domain"
)

// changedMsg avisa que el Controller muto su estado.
type changedMsg struct{}

// activatedMsg llega cuando termina la carga del historial.
type activatedMsg struct{ warning string }

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	botStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124")).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	headerHeight = 2
	footerHeight = 5
)

// ChatModel es la vista de chat con un personaje. Monta un Controller en
// Init y lo cierra al salir.
type ChatModel struct {
	ctrl      *chatclient.Controller
	character domain.Character

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	mdStyle  string
	renderer *glamour.TermRenderer
	rendered map[string]string

	width    int
	height   int
	ready    bool
	lastID   string
	quitting bool
}

type ChatOption func(*ChatModel)

// WithMarkdownStyle elige el estilo de glamour para las respuestas del bot.
func WithMarkdownStyle(style string) ChatOption {
	return func(m *ChatModel) { m.mdStyle = style }
}

func NewChatModel(ctrl *chatclient.Controller, opts ...ChatOption) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Say something to " + ctrl.Character().Name + "..."
	ti.CharLimit = 2000
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	m := ChatModel{
		ctrl:      ctrl,
		character: ctrl.Character(),
		input:     ti,
		viewport:  viewport.New(80, 20),
		spinner:   sp,
		mdStyle:   "notty",
		rendered:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m ChatModel) Init() tea.Cmd {
	ctrl := m.ctrl
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		func() tea.Msg {
			return activatedMsg{warning: ctrl.Activate(context.Background())}
		},
	)
}

func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m.quit()
		case tea.KeyEsc:
			if m.ctrl.Error() != "" {
				m.ctrl.ClearError()
				m.refresh()
				return m, nil
			}
			return m.quit()
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyCtrlR:
			if failed, ok := m.ctrl.LastFailed(); ok {
				_ = m.ctrl.Retry(failed.ID)
				m.refresh()
			}
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case changedMsg, activatedMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *ChatModel) submit() {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return
	}
	// Con ErrSendInFlight el texto queda en el input para reenviarlo despues.
	if err := m.ctrl.Send(text); err == nil {
		m.input.Reset()
	}
	m.refresh()
}

func (m ChatModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.ctrl.Close()
	return m, tea.Quit
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-4, 10)
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-footerHeight, 3)
	m.ready = true

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.mdStyle),
		glamour.WithWordWrap(max(width-6, 20)),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.rendered = make(map[string]string)
}

// refresh reconstruye el contenido y baja al final cuando llego un mensaje nuevo.
func (m *ChatModel) refresh() {
	msgs := m.ctrl.Messages()
	var b strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())

	if last, ok := m.ctrl.Last(); ok && last.ID != m.lastID {
		m.lastID = last.ID
		m.viewport.GotoBottom()
	}
}

func (m *ChatModel) renderMessage(msg domain.ChatMessage) string {
	if msg.Sender == domain.SenderUser {
		line := userStyle.Render("You") + " " + msg.Text
		switch msg.Status {
		case domain.StatusSending:
			line += " " + pendingStyle.Render("(sending)")
		case domain.StatusFailed:
			line += " " + failedStyle.Render("(failed, ctrl+r to retry)")
		}
		return line
	}

	body, ok := m.rendered[msg.ID]
	if !ok {
		body = msg.Text
		if m.renderer != nil {
			if out, err := m.renderer.Render(msg.Text); err == nil {
				body = strings.TrimRight(out, "\n")
			}
		}
		m.rendered[msg.ID] = body
	}
	return botStyle.Render(m.character.Name) + "\n" + body
}

func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.character.Name))
	if m.character.Title != "" {
		b.WriteString(titleStyle.Render(m.character.Title))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if errText := m.ctrl.Error(); errText != "" {
		b.WriteString(bannerStyle.Render(errText + "  (esc to dismiss)"))
	}
	b.WriteString("\n")
	if m.ctrl.Busy() {
		b.WriteString(fmt.Sprintf("%s %s is thinking...", m.spinner.View(), m.character.Name))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send · ctrl+r retry · pgup/pgdn scroll · ctrl+c quit"))
	return b.String()
}

// Run monta ctrl en una vista de pantalla completa y bloquea hasta que el
// usuario sale. El Controller queda cerrado al volver.
func Run(ctrl *chatclient.Controller, opts ...ChatOption) error {
	p := tea.NewProgram(NewChatModel(ctrl, opts...), tea.WithAltScreen())
	ctrl.OnChange(func() {
		go p.Send(changedMsg{})
	})
	_, err := p.Run()
	ctrl.Close()
	return err
}
