package dashboard

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nissmart/dashboard-cli/internal/application"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

// snapshotModel renders one frame and quits. One-shot commands use it so
// their output goes through the same styles as the live dashboard.
type snapshotModel struct {
	view   func(styles) string
	styles styles
	output string
}

func newSnapshotModel(view func(styles) string) snapshotModel {
	return snapshotModel{
		view:   view,
		styles: newStyles(),
	}
}

func (m snapshotModel) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m snapshotModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = m.view(m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m snapshotModel) View() string {
	return m.output
}

func RenderUser(state application.UserDashboardState, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderUserView(state, opts, s)
	})
}

func RenderAdmin(state application.AdminDashboardState, opts RenderOptions) (string, error) {
	return render(func(s styles) string {
		return renderAdminView(state, opts, s)
	})
}

func render(view func(styles) string) (string, error) {
	p := tea.NewProgram(
		newSnapshotModel(view),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(snapshotModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
