package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F5FD7")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorModel struct {
	filename string
	format   string
	summary  string
	parseErr error
	view     viewport.Model
	ready    bool
}

func runInteractive(file, format string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	name, summary, parseErr := inspect(data, format)
	m := inspectorModel{
		filename: file,
		format:   name,
		summary:  summary,
		parseErr: parseErr,
	}
	m.view = viewport.New(80, 24)
	m.view.SetContent(hexWindow(data, 0, (len(data)+15)/16))

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m inspectorModel) Init() tea.Cmd {
	return nil
}

func (m inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		headerHeight := 3
		m.view.Width = msg.Width
		m.view.Height = msg.Height - headerHeight
		m.ready = true
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m inspectorModel) View() string {
	title := titleStyle.Render(fmt.Sprintf("binspect %s [%s]", m.filename, m.format))

	var status string
	if m.parseErr != nil {
		status = errorStyle.Render(m.parseErr.Error())
	} else {
		status = okStyle.Render(m.summary)
	}

	help := helpStyle.Render("↑/↓ scroll · q quit")
	return fmt.Sprintf("%s\n%s\n%s\n%s", title, status, m.view.View(), help)
}
