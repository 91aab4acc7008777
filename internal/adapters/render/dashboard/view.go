package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
)

const trendBarWidth = 24

type RenderOptions struct {
	Now time.Time
	// StaleAfter marks the snapshot stale once it is older than this. Zero
	// disables the marker.
	StaleAfter time.Duration
	// Spinner replaces the plain loading label when set.
	Spinner string
}

func renderUserView(state application.UserDashboardState, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Nissmart Wallet"),
		s.header.Render(userSelector(state, s)),
	}

	if overlay := state.Overlay; overlay != nil {
		lines = append(lines, s.section.Render(s.overlay.Render(overlay.Text())))
	}

	id, ok := state.Selected.UserID()
	if !ok {
		lines = append(lines, s.section.Render(s.empty.Render("No user selected.")))
		return joinWithFooter(lines, state.ActionError, state.Notifications, s)
	}

	subjectTitle := state.Selected.Label()
	if user, found := state.SelectedUser(); found {
		subjectTitle = user.Label()
	}
	lines = append(lines, s.section.Render(s.subject.Render(subjectTitle)))
	lines = append(lines, balanceLine(state.Session, opts, s))
	if status := sessionStatus(state.Session, opts, s); status != "" {
		lines = append(lines, status)
	}

	lines = append(lines, s.section.Render(s.title.Render("Transactions")))
	lines = append(lines, transactionLines(state.Session, opts, id, s)...)

	return joinWithFooter(lines, state.ActionError, state.Notifications, s)
}

func renderAdminView(state application.AdminDashboardState, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Nissmart Admin"),
	}

	if !state.HasSummary {
		lines = append(lines, s.section.Render(loadingLabel(state.Session.LoadingPrimary, opts, s, "No summary available.")))
	} else {
		summary := state.Summary
		lines = append(lines,
			s.section.Render(s.key.Render("users:       ")+s.detail.Render(fmt.Sprintf("%d", summary.TotalUsers))),
			s.key.Render("total value: ")+s.balance.Render(formatMoney(summary.TotalValue, summary.Currency)),
			s.key.Render("transfers:   ")+s.detail.Render(fmt.Sprintf("%d", summary.TotalTransfers)),
			s.key.Render("withdrawals: ")+s.detail.Render(fmt.Sprintf("%d", summary.TotalWithdrawals)),
		)
	}
	if status := sessionStatus(state.Session, opts, s); status != "" {
		lines = append(lines, status)
	}

	lines = append(lines, s.section.Render(s.title.Render("Daily volume")))
	lines = append(lines, trendLines(state.DailyTotals, s)...)

	lines = append(lines, s.section.Render(s.title.Render("Recent activity")))
	if len(state.Recent) == 0 {
		lines = append(lines, loadingLabel(state.Session.LoadingTransactions, opts, s, "No recent activity."))
	}
	for _, tx := range state.Recent {
		lines = append(lines, transactionLine(tx, opts, 0, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func userSelector(state application.UserDashboardState, s styles) string {
	if len(state.Users) == 0 {
		return "users: none yet"
	}

	selected, _ := state.Selected.UserID()
	labels := make([]string, 0, len(state.Users))
	for _, user := range state.Users {
		if user.ID == selected {
			labels = append(labels, s.selected.Render("["+user.Label()+"]"))
			continue
		}
		labels = append(labels, user.Label())
	}

	return fmt.Sprintf("users: %s", strings.Join(labels, "  "))
}

func balanceLine(session application.SessionState, opts RenderOptions, s styles) string {
	balance, ok := session.Snapshot.Balance()
	if !ok {
		return loadingLabel(session.LoadingPrimary, opts, s, "balance: n/a")
	}

	line := s.key.Render("balance: ") + s.balance.Render(formatMoney(balance.Amount, balance.Currency))
	if session.LoadingPrimary && opts.Spinner != "" {
		line += " " + opts.Spinner
	}
	return line
}

func transactionLines(session application.SessionState, opts RenderOptions, viewer domain.UserID, s styles) []string {
	if session.Snapshot == nil || len(session.Snapshot.Transactions) == 0 {
		return []string{loadingLabel(session.LoadingTransactions, opts, s, "No transactions yet.")}
	}

	lines := make([]string, 0, len(session.Snapshot.Transactions))
	for _, tx := range session.Snapshot.Transactions {
		lines = append(lines, transactionLine(tx, opts, viewer, s))
	}
	return lines
}

// transactionLine renders one row. A non-zero viewer signs the amount from
// that user's point of view.
func transactionLine(tx domain.Transaction, opts RenderOptions, viewer domain.UserID, s styles) string {
	amount := tx.Amount.StringFixed(2)
	amountStyle := s.detail
	if viewer > 0 {
		if isDebit(tx, viewer) {
			amount = "-" + amount
			amountStyle = s.debit
		} else {
			amount = "+" + amount
			amountStyle = s.credit
		}
	}

	parts := []string{
		s.meta.Render(fmt.Sprintf("#%-5d", tx.ID)),
		s.key.Render(fmt.Sprintf("%-8s", tx.Type)),
		amountStyle.Render(fmt.Sprintf("%10s", amount)),
		statusLabel(tx.Status, s),
		s.meta.Render(formatTimestamp(tx.CreatedAt, opts.Now)),
	}
	if parties := partiesLabel(tx); parties != "" {
		parts = append(parts, s.detail.Render(parties))
	}
	if description := strings.TrimSpace(tx.Description); description != "" {
		parts = append(parts, s.empty.Render(description))
	}

	return strings.Join(parts, " ")
}

func isDebit(tx domain.Transaction, viewer domain.UserID) bool {
	if tx.Type == domain.TransactionDeposit {
		return false
	}
	if tx.Type == domain.TransactionWithdraw {
		return true
	}
	return tx.From != nil && *tx.From == viewer
}

func partiesLabel(tx domain.Transaction) string {
	switch {
	case tx.From != nil && tx.To != nil:
		return fmt.Sprintf("#%d -> #%d", *tx.From, *tx.To)
	case tx.From != nil:
		return fmt.Sprintf("from #%d", *tx.From)
	case tx.To != nil:
		return fmt.Sprintf("to #%d", *tx.To)
	default:
		return ""
	}
}

func statusLabel(status domain.TransactionStatus, s styles) string {
	label := fmt.Sprintf("%-9s", status)
	switch status {
	case domain.StatusFailed:
		return s.warning.Render(label)
	case domain.StatusPending:
		return s.meta.Render(label)
	default:
		return s.detail.Render(label)
	}
}

func trendLines(totals []domain.DailyTotal, s styles) []string {
	if len(totals) == 0 {
		return []string{s.empty.Render("No volume yet.")}
	}

	peak := decimal.Zero
	for _, total := range totals {
		if total.Total.GreaterThan(peak) {
			peak = total.Total
		}
	}

	lines := make([]string, 0, len(totals))
	for _, total := range totals {
		ratio := 0.0
		if peak.IsPositive() {
			ratio = total.Total.Div(peak).InexactFloat64()
		}
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.key.Render(total.Date.Format("02 Jan")),
			" ",
			renderBar(ratio, trendBarWidth, s),
			" ",
			s.detail.Render(total.Total.StringFixed(2)),
			" ",
			s.meta.Render(countLabel(total.Count)),
		))
	}
	return lines
}

func countLabel(count int) string {
	if count == 1 {
		return "(1 tx)"
	}
	return fmt.Sprintf("(%d txs)", count)
}

func renderBar(ratio float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampRatio(ratio)))
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func clampRatio(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func sessionStatus(session application.SessionState, opts RenderOptions, s styles) string {
	parts := make([]string, 0, 3)
	if session.LastError != "" {
		parts = append(parts, s.warning.Render(session.LastError))
	}
	if !session.LastUpdatedAt.IsZero() && !opts.Now.IsZero() {
		parts = append(parts, s.meta.Render("updated "+formatAge(session.LastUpdatedAt, opts.Now)))
		if opts.StaleAfter > 0 && opts.Now.Sub(session.LastUpdatedAt) > opts.StaleAfter {
			parts = append(parts, s.warning.Render("[stale]"))
		}
	}
	if !session.Active && session.Snapshot != nil {
		parts = append(parts, s.meta.Render("[paused]"))
	}

	return strings.Join(parts, " ")
}

func loadingLabel(loading bool, opts RenderOptions, s styles, idle string) string {
	if !loading {
		return s.empty.Render(idle)
	}
	if opts.Spinner != "" {
		return opts.Spinner + " " + s.empty.Render("loading")
	}
	return s.empty.Render("loading...")
}

func joinWithFooter(lines []string, actionError string, toasts []domain.Notification, s styles) string {
	if actionError != "" {
		lines = append(lines, s.section.Render(s.warning.Render("error: "+actionError)))
	}
	if len(toasts) > 0 {
		rendered := make([]string, 0, len(toasts))
		for _, toast := range toasts {
			rendered = append(rendered, s.toast.Render(toast.Message))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, rendered...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatMoney(amount decimal.Decimal, currency string) string {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

func formatTimestamp(at, now time.Time) string {
	if at.IsZero() {
		return "--:--"
	}
	if now.IsZero() {
		return at.Format("2006-01-02 15:04")
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}

	return at.Format("15:04 on 02 Jan")
}

func formatAge(at, now time.Time) string {
	age := now.Sub(at)
	switch {
	case age < time.Second:
		return "just now"
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		return formatTimestamp(at, now)
	}
}
