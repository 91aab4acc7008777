package dashboard

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Task is one blocking ledger call shown behind a spinner. The last frame
// names the task and how it settled.
type Task struct {
	Title   string
	Label   string
	Work    func(context.Context) error
	Failure func(error) string
}

type taskDoneMsg struct {
	err error
}

type taskModel struct {
	task    Task
	work    tea.Cmd
	styles  styles
	spinner spinner.Model
	err     error
	done    bool
}

func newTaskModel(task Task, work tea.Cmd) taskModel {
	return taskModel{
		task:    task,
		work:    work,
		styles:  newStyles(),
		spinner: newSpinner(),
	}
}

func (m taskModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m taskModel) View() string {
	if !m.done {
		return m.spinner.View() + " " + m.task.Label
	}
	if m.err != nil {
		return m.styles.warning.Render("✗ "+m.task.Title+": "+m.failure()) + "\n"
	}
	return m.styles.credit.Render("✓ "+m.task.Title) + "\n"
}

func (m taskModel) failure() string {
	if m.task.Failure != nil {
		if message := m.task.Failure(m.err); message != "" {
			return message
		}
	}
	return m.err.Error()
}

// RunTask runs task.Work while a spinner shows task.Label on out and
// returns the work's error.
func RunTask(ctx context.Context, out io.Writer, task Task) error {
	work := func() tea.Msg {
		return taskDoneMsg{err: task.Work(ctx)}
	}

	p := tea.NewProgram(
		newTaskModel(task, work),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := final.(taskModel)
	if !ok {
		return ErrUnexpectedRenderModel
	}
	return result.err
}
