package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const clockRefresh = time.Second

const (
	userHelp  = "tab/shift+tab: switch user  c: create  d: deposit  t: transfer  w: withdraw  r: refresh  x: dismiss  esc: clear  q: quit"
	adminHelp = "r: refresh  q: quit"
	formHelp  = "enter: next/submit  tab: next field  esc: cancel"
)

// UserController is the slice of application.UserDashboard the live view
// drives.
type UserController interface {
	State() application.UserDashboardState
	Subscribe(fn func()) func()
	Select(ctx context.Context, id domain.UserID) error
	Submit(ctx context.Context, action domain.Action) (application.Outcome, error)
	RefreshNow()
	DismissNotification(id domain.NotificationID)
	ClearOverlay()
}

type AdminController interface {
	State() application.AdminDashboardState
	Subscribe(fn func()) func()
	RefreshNow()
}

var (
	_ UserController  = (*application.UserDashboard)(nil)
	_ AdminController = (*application.AdminDashboard)(nil)
)

type ProgramConfig struct {
	Clock      ports.Clock
	StaleAfter time.Duration
}

type stateChangedMsg struct{}

type clockTickMsg time.Time

type submitDoneMsg struct {
	err error
}

// changeFeed turns listener callbacks into bubbletea messages. Bursts of
// callbacks collapse into one pending message.
type changeFeed struct {
	ch          chan struct{}
	unsubscribe func()
}

func newChangeFeed(subscribe func(func()) func()) *changeFeed {
	feed := &changeFeed{ch: make(chan struct{}, 1)}
	feed.unsubscribe = subscribe(func() {
		select {
		case feed.ch <- struct{}{}:
		default:
		}
	})
	return feed
}

func (f *changeFeed) wait(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.ch:
			return stateChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(clockRefresh, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)
}

// actionForm stays open while its submission is in flight so a rejected
// action keeps what the user typed.
type actionForm struct {
	kind       domain.ActionKind
	labels     []string
	inputs     []textinput.Model
	focus      int
	err        string
	submitting bool
}

func newActionForm(kind domain.ActionKind) *actionForm {
	var labels []string
	switch kind {
	case domain.ActionCreateUser:
		labels = []string{"Name", "Email"}
	case domain.ActionTransfer:
		labels = []string{"Recipient ID", "Amount"}
	default:
		labels = []string{"Amount"}
	}

	f := &actionForm{kind: kind, labels: labels}
	for _, label := range labels {
		input := textinput.New()
		input.Placeholder = strings.ToLower(label)
		input.CharLimit = 64
		f.inputs = append(f.inputs, input)
	}
	f.inputs[0].Focus()
	return f
}

func (f *actionForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *actionForm) value(label string) string {
	for i, l := range f.labels {
		if l == label {
			return strings.TrimSpace(f.inputs[i].Value())
		}
	}
	return ""
}

// action builds the request from the inputs. Only parse failures are caught
// here; the dispatcher validates the rest.
func (f *actionForm) action() (domain.Action, error) {
	if f.kind == domain.ActionCreateUser {
		return domain.CreateUser{Name: f.value("Name"), Email: f.value("Email")}, nil
	}

	amount, err := parseAmount(f.value("Amount"))
	if err != nil {
		return nil, err
	}

	switch f.kind {
	case domain.ActionDeposit:
		return domain.Deposit{Amount: amount}, nil
	case domain.ActionWithdraw:
		return domain.Withdraw{Amount: amount}, nil
	case domain.ActionTransfer:
		to, err := parseUserID(f.value("Recipient ID"))
		if err != nil {
			return nil, err
		}
		return domain.Transfer{To: to, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("unsupported action %s", f.kind)
	}
}

func (f *actionForm) view(s styles) string {
	lines := []string{s.title.Render(f.kind.Title())}
	for i, input := range f.inputs {
		lines = append(lines, s.key.Render(fmt.Sprintf("%-13s", f.labels[i]+":"))+input.View())
	}
	if f.err != "" {
		lines = append(lines, s.warning.Render(f.err))
	}
	lines = append(lines, s.help.Render(formHelp))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("Amount must be a number")
	}
	return amount, nil
}

func parseUserID(raw string) (domain.UserID, error) {
	raw = strings.TrimPrefix(raw, "#")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("Recipient ID must be a number")
	}
	return domain.UserID(id), nil
}

type userModel struct {
	ctx     context.Context
	ctrl    UserController
	feed    *changeFeed
	clock   ports.Clock
	opts    RenderOptions
	styles  styles
	spinner spinner.Model
	state   application.UserDashboardState
	form    *actionForm
	notice  string
}

func newUserModel(ctx context.Context, ctrl UserController, cfg ProgramConfig) userModel {
	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return userModel{
		ctx:     ctx,
		ctrl:    ctrl,
		feed:    newChangeFeed(ctrl.Subscribe),
		clock:   clock,
		opts:    RenderOptions{StaleAfter: cfg.StaleAfter},
		styles:  newStyles(),
		spinner: newSpinner(),
		state:   ctrl.State(),
	}
}

func (m userModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.feed.wait(m.ctx), tickClock())
}

func (m userModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.state = m.ctrl.State()
		return m, m.feed.wait(m.ctx)
	case clockTickMsg:
		return m, tickClock()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case submitDoneMsg:
		if errors.Is(msg.err, domain.ErrBusy) {
			m.notice = "Another action is still in progress."
		}
		m.state = m.ctrl.State()
		m.settleForm(msg.err)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.feed.unsubscribe()
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg)
	default:
		return m, nil
	}
}

func (m userModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q":
		m.feed.unsubscribe()
		return m, tea.Quit
	case "tab", "right", "l":
		m.cycleUser(1)
	case "shift+tab", "left", "h":
		m.cycleUser(-1)
	case "c":
		m.form = newActionForm(domain.ActionCreateUser)
		return m, textinput.Blink
	case "d", "t", "w":
		if _, ok := m.state.Selected.UserID(); !ok {
			m.notice = "Select a user first."
			return m, nil
		}
		m.form = newActionForm(map[string]domain.ActionKind{
			"d": domain.ActionDeposit,
			"t": domain.ActionTransfer,
			"w": domain.ActionWithdraw,
		}[msg.String()])
		return m, textinput.Blink
	case "r":
		m.ctrl.RefreshNow()
	case "x":
		if len(m.state.Notifications) > 0 {
			m.ctrl.DismissNotification(m.state.Notifications[0].ID)
		}
	case "esc":
		m.ctrl.ClearOverlay()
	}
	m.state = m.ctrl.State()
	return m, nil
}

func (m *userModel) cycleUser(delta int) {
	users := m.state.Users
	if len(users) == 0 {
		return
	}

	current := -1
	if id, ok := m.state.Selected.UserID(); ok {
		for i, user := range users {
			if user.ID == id {
				current = i
				break
			}
		}
	}

	next := 0
	if current >= 0 {
		next = (current + delta + len(users)) % len(users)
	} else if delta < 0 {
		next = len(users) - 1
	}

	if err := m.ctrl.Select(m.ctx, users[next].ID); err != nil {
		m.notice = err.Error()
	}
}

// settleForm closes a submitted form on success and reopens it for editing
// on failure.
func (m *userModel) settleForm(err error) {
	if m.form == nil || !m.form.submitting {
		return
	}
	if err == nil {
		m.form = nil
		return
	}

	m.form.submitting = false
	switch {
	case errors.Is(err, domain.ErrBusy):
		m.form.err = ""
	case m.state.ActionError != "":
		m.form.err = m.state.ActionError
	default:
		m.form.err = domain.UserMessage(err, m.form.kind.Title()+" failed")
	}
}

func (m userModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.form = nil
		return m, nil
	}
	if m.form.submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.form.move(1)
		return m, nil
	case "shift+tab", "up":
		m.form.move(-1)
		return m, nil
	case "enter":
		if m.form.focus < len(m.form.inputs)-1 {
			m.form.move(1)
			return m, nil
		}
		action, err := m.form.action()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.form.err = ""
		m.form.submitting = true
		return m, m.submit(action)
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m userModel) submit(action domain.Action) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Submit(ctx, action)
		return submitDoneMsg{err: err}
	}
}

func (m userModel) View() string {
	opts := m.opts
	opts.Now = m.clock.Now()
	opts.Spinner = m.spinner.View()

	sections := []string{renderUserView(m.state, opts, m.styles)}
	if m.state.Busy {
		sections = append(sections, m.styles.section.Render(m.spinner.View()+" submitting"))
	}
	if m.form != nil {
		sections = append(sections, m.styles.section.Render(m.form.view(m.styles)))
	}
	if m.notice != "" {
		sections = append(sections, m.styles.warning.Render(m.notice))
	}
	if m.form == nil {
		sections = append(sections, m.styles.section.Render(m.styles.help.Render(userHelp)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type adminModel struct {
	ctx     context.Context
	ctrl    AdminController
	feed    *changeFeed
	clock   ports.Clock
	opts    RenderOptions
	styles  styles
	spinner spinner.Model
	state   application.AdminDashboardState
}

func newAdminModel(ctx context.Context, ctrl AdminController, cfg ProgramConfig) adminModel {
	clock := cfg.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return adminModel{
		ctx:     ctx,
		ctrl:    ctrl,
		feed:    newChangeFeed(ctrl.Subscribe),
		clock:   clock,
		opts:    RenderOptions{StaleAfter: cfg.StaleAfter},
		styles:  newStyles(),
		spinner: newSpinner(),
		state:   ctrl.State(),
	}
}

func (m adminModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.feed.wait(m.ctx), tickClock())
}

func (m adminModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.state = m.ctrl.State()
		return m, m.feed.wait(m.ctx)
	case clockTickMsg:
		return m, tickClock()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.feed.unsubscribe()
			return m, tea.Quit
		case "r":
			m.ctrl.RefreshNow()
			m.state = m.ctrl.State()
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m adminModel) View() string {
	opts := m.opts
	opts.Now = m.clock.Now()
	opts.Spinner = m.spinner.View()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderAdminView(m.state, opts, m.styles),
		m.styles.section.Render(m.styles.help.Render(adminHelp)),
	)
}

// RunUser drives the user dashboard until the user quits or ctx ends.
func RunUser(ctx context.Context, ctrl UserController, cfg ProgramConfig, opts ...tea.ProgramOption) error {
	return run(ctx, newUserModel(ctx, ctrl, cfg), opts)
}

func RunAdmin(ctx context.Context, ctrl AdminController, cfg ProgramConfig, opts ...tea.ProgramOption) error {
	return run(ctx, newAdminModel(ctx, ctrl, cfg), opts)
}

func run(ctx context.Context, model tea.Model, opts []tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
