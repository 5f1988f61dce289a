// Package ui is the consuming side of the collection pipeline: a minimal
// terminal dashboard that renders published snapshots. It only ever reads
// snapshot handles and read-only series queries; all mutation stays on the
// scheduler's goroutine.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/termstat/termstat/internal/models"
	"github.com/termstat/termstat/internal/services"
	"github.com/termstat/termstat/internal/timeseries"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	frozenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// snapshotMsg signals that a new snapshot was published.
type snapshotMsg struct{}

// Dashboard is the bubbletea model for the monitor view.
type Dashboard struct {
	svc   *services.CollectionService
	store *timeseries.Store

	procTable table.Model
	width     int
}

// NewDashboard builds the dashboard around a running collection service.
func NewDashboard(svc *services.CollectionService, store *timeseries.Store) *Dashboard {
	columns := []table.Column{
		{Title: "PID", Width: 7},
		{Title: "Name", Width: 20},
		{Title: "CPU%", Width: 6},
		{Title: "Mem", Width: 10},
		{Title: "R/s", Width: 10},
		{Title: "W/s", Width: 10},
		{Title: "User", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(12),
		table.WithFocused(true),
	)

	return &Dashboard{svc: svc, store: store, procTable: t}
}

func (d *Dashboard) Init() tea.Cmd {
	return d.waitForSnapshot()
}

func (d *Dashboard) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		<-d.svc.Updates()
		return snapshotMsg{}
	}
}

func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		case "f":
			d.svc.ToggleFreeze()
			d.refreshRows()
			return d, nil
		}
	case tea.WindowSizeMsg:
		d.width = msg.Width
		return d, nil
	case snapshotMsg:
		d.refreshRows()
		return d, d.waitForSnapshot()
	}

	var cmd tea.Cmd
	d.procTable, cmd = d.procTable.Update(msg)
	return d, cmd
}

// refreshRows rebuilds the process table from the display snapshot, sorted by
// CPU usage descending.
func (d *Dashboard) refreshRows() {
	data := d.svc.Display()
	if data == nil || data.Processes == nil {
		return
	}

	procs := make([]*models.ProcessHarvest, 0, len(data.Processes.Harvest))
	for _, h := range data.Processes.Harvest {
		procs = append(procs, h)
	}
	sort.Slice(procs, func(i, j int) bool {
		return procs[i].CPUUsagePercent > procs[j].CPUUsagePercent
	})

	rows := make([]table.Row, 0, len(procs))
	for _, p := range procs {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", p.Pid),
			p.Name,
			fmt.Sprintf("%.1f", p.CPUUsagePercent),
			humanize.IBytes(p.MemUsageBytes),
			humanize.IBytes(uint64(p.ReadBytesPerSec)),
			humanize.IBytes(uint64(p.WriteBytesPerSec)),
			p.User,
		})
	}
	d.procTable.SetRows(rows)
}

func (d *Dashboard) View() string {
	data := d.svc.Display()
	if data == nil {
		return labelStyle.Render("collecting...")
	}

	var b strings.Builder

	title := "termstat"
	if d.svc.IsFrozen() {
		title += "  " + frozenStyle.Render("[frozen]")
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if data.CPU != nil {
		b.WriteString(fmt.Sprintf("%s %5.1f%%  %s\n",
			labelStyle.Render("cpu "), data.CPU.Avg, sparkline(d.store.Snapshot(timeseries.KeyCPUAvg), 40)))
	}
	if data.Memory != nil {
		b.WriteString(fmt.Sprintf("%s %5.1f%%  %s / %s\n",
			labelStyle.Render("mem "), data.Memory.UsedPercent,
			humanize.IBytes(data.Memory.UsedBytes), humanize.IBytes(data.Memory.TotalBytes)))
	}
	if data.Network != nil {
		b.WriteString(fmt.Sprintf("%s rx %s/s  tx %s/s\n",
			labelStyle.Render("net "),
			humanize.IBytes(uint64(data.Network.RxBytesPerSec)),
			humanize.IBytes(uint64(data.Network.TxBytesPerSec))))
	}
	for _, t := range data.Temps {
		b.WriteString(fmt.Sprintf("%s %s %.1f%s\n",
			labelStyle.Render("temp"), t.Sensor, t.Value, t.Scale.Symbol()))
	}
	for _, bat := range data.Batteries {
		b.WriteString(fmt.Sprintf("%s %.0f%% (%s)\n", labelStyle.Render("batt"), bat.Percent, bat.State))
	}

	b.WriteString("\n" + d.procTable.View() + "\n")
	b.WriteString(helpStyle.Render("f freeze · q quit"))

	return b.String()
}

// sparkline renders the tail of a series as unicode blocks scaled 0-100.
func sparkline(points []timeseries.Point, width int) string {
	if len(points) > width {
		points = points[len(points)-width:]
	}

	var b strings.Builder
	for _, p := range points {
		v := p.Value
		if v < 0 {
			v = 0
		} else if v > 100 {
			v = 100
		}
		idx := int(v / 100 * float64(len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}
