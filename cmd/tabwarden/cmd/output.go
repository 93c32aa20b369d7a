package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/corey/tabwarden/internal/adapters/socket"
	"github.com/corey/tabwarden/internal/domain/status"
)

var (
	colorAccent = lipgloss.Color("#74c7ec")
	colorGood   = lipgloss.Color("#a6e3a1")
	colorWarn   = lipgloss.Color("#fab387")
	colorMuted  = lipgloss.Color("#a6adc8")

	styleTitle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	styleGood   = lipgloss.NewStyle().Foreground(colorGood)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleDomain = lipgloss.NewStyle().Foreground(colorAccent)
	styleLabel  = lipgloss.NewStyle().Width(12)
)

// barWidth is the widest trend bar, in cells.
const barWidth = 30

func row(label, value string) string {
	return "  " + styleLabel.Render(label) + value + "\n"
}

// formatDuration renders milliseconds as a compact duration: 1h5m, 4m12s, 9s.
func formatDuration(ms int64) string {
	d := (time.Duration(ms) * time.Millisecond).Round(time.Second)
	if d >= time.Hour {
		d = d.Round(time.Minute)
		s := d.String()
		return strings.TrimSuffix(s, "0s")
	}
	return d.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("tabwarden daemon") + "\n")
	sb.WriteString(row("Status:", styleGood.Render(h.Status)))
	sb.WriteString(row("Uptime:", h.Uptime))
	sb.WriteString(row("Events:", fmt.Sprintf("%d", h.Events)))
	sb.WriteString(row("Generator:", h.Generator))
	return sb.String()
}

// formatStatus formats the status snapshot.
//
//	tabwarden  ▸ 82 pts  🔥 3
//	  Today:      15m0s distracted
//	  Penalty:    18 pts
//	  Sprint:     off
//	  Top:        youtube.com, reddit.com
func formatStatus(st *status.StatusData) string {
	var sb strings.Builder
	head := fmt.Sprintf("%s  ▸ %d pts", styleTitle.Render("tabwarden"), st.Balance)
	if st.Streak > 0 {
		head += fmt.Sprintf("  🔥 %d", st.Streak)
	}
	sb.WriteString(head + "\n")

	today := formatDuration(st.TodayMs) + " distracted"
	if st.Distracted != "" {
		today += "  " + styleWarn.Render("now on "+st.Distracted)
	}
	sb.WriteString(row("Today:", today))
	if st.PenaltyToday > 0 {
		sb.WriteString(row("Penalty:", styleWarn.Render(fmt.Sprintf("%d pts", st.PenaltyToday))))
	}
	sprint := styleMuted.Render("off")
	if st.SprintActive {
		sprint = styleGood.Render("running")
	}
	sb.WriteString(row("Sprint:", sprint))
	if len(st.TopDomains) > 0 {
		doms := make([]string, len(st.TopDomains))
		for i, d := range st.TopDomains {
			doms[i] = styleDomain.Render(d)
		}
		sb.WriteString(row("Top:", strings.Join(doms, ", ")))
	}
	if st.LastAlert != nil {
		sb.WriteString(row("Last alert:", st.LastAlert.Title+" "+styleMuted.Render(st.LastAlert.Message)))
	}
	return sb.String()
}

// formatStats lists today's distracting domains, heaviest first.
func formatStats(r *socket.StatsResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s │ %d domains │ %s today\n",
		styleTitle.Render("distraction"), r.Count, formatDuration(r.TotalTodayMs)))
	if r.Count == 0 {
		sb.WriteString(styleMuted.Render("  nothing recorded today") + "\n")
		return sb.String()
	}
	for _, d := range r.Domains {
		sb.WriteString(fmt.Sprintf("  %-24s %8s  %s\n",
			d.Domain, formatDuration(d.TodayMs),
			styleMuted.Render(fmt.Sprintf("%d visits, %s lifetime", d.Count, formatDuration(d.TotalMs)))))
	}
	return sb.String()
}

// formatTrend draws one bar per day, scaled to the busiest day.
func formatTrend(r *socket.TrendResult) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("daily trend") + "\n")
	if r.Count == 0 {
		sb.WriteString(styleMuted.Render("  no history yet") + "\n")
		return sb.String()
	}
	var peak int64
	for _, d := range r.Days {
		peak = max(peak, d.TotalDistractionMs)
	}
	for _, d := range r.Days {
		n := 0
		if peak > 0 {
			n = int(d.TotalDistractionMs * barWidth / peak)
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			d.Date, styleWarn.Render(strings.Repeat("█", n)), formatDuration(d.TotalDistractionMs)))
	}
	return sb.String()
}

// formatInsights shows the last nudge, flow and classification.
func formatInsights(ins *socket.InsightsResult) string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("insights") + "\n")
	if n := ins.LastNudge; n != nil {
		sb.WriteString(row("Nudge:", n.Text))
		sb.WriteString(row("", styleMuted.Render(fmt.Sprintf("%s → %s via %s", n.From, n.To, n.Source))))
	}
	if f := ins.LastDistractionFlow; f != nil {
		sb.WriteString(row("Flow:", f.From+" → "+f.To))
	}
	if c := ins.LastClassification; c != nil {
		sb.WriteString(row("Site:", fmt.Sprintf("%s (%s)", styleDomain.Render(c.Site), c.Class)))
	}
	u := ins.GeminiUsage
	sb.WriteString(row("Generator:", fmt.Sprintf("%d calls, %d errors", u.Count, u.Errors)))
	return sb.String()
}
