package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/quantaform/firecracker-sdk/internal/transport"
	"github.com/quantaform/firecracker-sdk/pkg/fcapi"
)

var fireGradient = []string{"#ff0000", "#ff4500", "#ff6b00", "#ff8c00", "#ffa500"}
var greenGradient = []string{"#00ff87", "#00e676", "#00c853", "#00a843", "#008837"}

var (
	titleGlowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff4500")).
			Padding(0, 1).
			MarginBottom(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00d4ff")).
			Padding(1, 2)

	boxActiveStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#00ff87")).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff87")).Bold(true)
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4757")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).MarginTop(1)
)

type instanceStatus struct {
	Reachable   bool
	State       string
	VCPUs       int
	MemSizeMib  int
	AppVersion  string
	VMMVersion  string
}

type dashboardModel struct {
	spinner    spinner.Model
	client     *transport.Client
	socket     string
	status     instanceStatus
	lastUpdate time.Time
	err        error
	quitting   bool
	tick       int
}

type tickMsg time.Time
type animateMsg time.Time
type statusMsg struct {
	status instanceStatus
	err    error
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show a live status dashboard for a running instance",
		Long: `Poll the instance's API socket and render its reachability, state
and machine shape, refreshing automatically.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(cmd)
			if err != nil {
				return err
			}
			return runDashboard(client, viperSocket())
		},
	}
	return cmd
}

func runDashboard(client *transport.Client, socket string) error {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b00"))

	m := dashboardModel{spinner: s, client: client, socket: socket}

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.fetchStatus,
		tea.Every(2*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		tea.Every(150*time.Millisecond, func(t time.Time) tea.Msg { return animateMsg(t) }),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchStatus
		}

	case tickMsg:
		return m, tea.Batch(
			m.fetchStatus,
			tea.Every(2*time.Second, func(t time.Time) tea.Msg { return tickMsg(t) }),
		)

	case animateMsg:
		m.tick++
		return m, tea.Every(150*time.Millisecond, func(t time.Time) tea.Msg { return animateMsg(t) })

	case statusMsg:
		m.status = msg.status
		m.err = msg.err
		m.lastUpdate = time.Now()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBox())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m dashboardModel) renderTitle() string {
	title := "fcctl Dashboard"
	var result strings.Builder
	for i, char := range title {
		colorIdx := (i + m.tick) % len(fireGradient)
		charStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(fireGradient[colorIdx]))
		result.WriteString(charStyle.Render(string(char)))
	}
	return titleGlowStyle.Render(result.String())
}

func (m dashboardModel) renderStatusBox() string {
	var content strings.Builder

	if !m.status.Reachable {
		content.WriteString(fmt.Sprintf("%s %s\n", stoppedStyle.Render("●"), stoppedStyle.Render("Unreachable")))
		content.WriteString("\n")
		dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Italic(true)
		content.WriteString(dim.Render("Socket: " + m.socket))
		return boxStyle.Width(50).Render(content.String())
	}

	indicator := m.renderPulsingDot()
	content.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render("State:"), indicator, runningStyle.Render(m.status.State)))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("vCPUs:  "), valueStyle.Render(fmt.Sprintf("%d", m.status.VCPUs))))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Memory: "), valueStyle.Render(fmt.Sprintf("%d MiB", m.status.MemSizeMib))))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("App:    "), valueStyle.Render(m.status.AppVersion)))
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("VMM:    "), valueStyle.Render(m.status.VMMVersion)))

	return boxActiveStyle.Width(50).Render(content.String())
}

func (m dashboardModel) renderPulsingDot() string {
	colorIdx := m.tick % len(greenGradient)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(greenGradient[colorIdx])).Bold(true)
	return style.Render("●")
}

func (m dashboardModel) renderFooter() string {
	var footer strings.Builder
	updateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	footer.WriteString(updateStyle.Render(fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05"))))

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4757"))
		footer.WriteString(errStyle.Render(fmt.Sprintf(" (error: %v)", m.err)))
	}
	footer.WriteString("\n")

	rKey := lipgloss.NewStyle().Foreground(lipgloss.Color("#00d4ff")).Bold(true).Render("r")
	qKey := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4757")).Bold(true).Render("q")
	footer.WriteString(helpStyle.Render("Press "))
	footer.WriteString(rKey)
	footer.WriteString(helpStyle.Render(" to refresh • "))
	footer.WriteString(qKey)
	footer.WriteString(helpStyle.Render(" to quit"))

	return footer.String()
}

func (m dashboardModel) fetchStatus() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var info fcapi.InstanceInfo
	if err := m.client.Describe(ctx, "/", &info); err != nil {
		return statusMsg{status: instanceStatus{Reachable: false}, err: err}
	}

	status := instanceStatus{
		Reachable:  true,
		State:      info.State,
		AppVersion: info.AppName,
		VMMVersion: info.VMMVersion,
	}

	var cfg fcapi.MachineConfig
	if err := m.client.Describe(ctx, fcapi.Endpoints[fcapi.KindMachineConfig].Path, &cfg); err == nil {
		status.VCPUs = cfg.VCPUCount
		status.MemSizeMib = cfg.MemSizeMib
	}

	return statusMsg{status: status}
}
