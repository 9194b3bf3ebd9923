// Package report renders session results for the terminal and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack-ipc/internal/fileutil"
	"github.com/lox/blackjack-ipc/internal/simulator"
	"github.com/lox/blackjack-ipc/internal/store"
	"github.com/lox/blackjack-ipc/internal/transport"
)

const rule = "----------------------------------------------"

// ActorSummary is one actor's line of the report
type ActorSummary struct {
	Wins       int     `json:"wins"`
	Percentage float64 `json:"percentage"`
}

// Summary is the machine-readable form of a finished session
type Summary struct {
	RunID     string       `json:"run_id"`
	Transport string       `json:"transport"`
	Scoring   string       `json:"scoring"`
	Seed      int64        `json:"seed"`
	Games     int          `json:"games"`
	ElapsedMS int64        `json:"elapsed_ms"`
	PlayerOne ActorSummary `json:"player_one"`
	PlayerTwo ActorSummary `json:"player_two"`
	Dealer    ActorSummary `json:"dealer"`
}

// NewSummary summarises a finished session
func NewSummary(r *simulator.Result) Summary {
	t := r.Tally
	return Summary{
		RunID:     r.RunID.String(),
		Transport: string(r.Transport),
		Scoring:   string(t.Scoring),
		Seed:      r.Seed,
		Games:     t.Rounds,
		ElapsedMS: r.Elapsed.Milliseconds(),
		PlayerOne: ActorSummary{Wins: t.P1Wins(), Percentage: t.Percentage(t.P1Wins())},
		PlayerTwo: ActorSummary{Wins: t.P2Wins(), Percentage: t.Percentage(t.P2Wins())},
		Dealer:    ActorSummary{Wins: t.DealerWins, Percentage: t.Percentage(t.DealerWins)},
	}
}

// WriteJSON writes the summary to filename atomically
func WriteJSON(filename string, s Summary) error {
	return fileutil.WriteAtomic(filename, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	})
}

// Renderer writes styled reports to a terminal or any other writer
type Renderer struct {
	out io.Writer

	header lipgloss.Style
	label  lipgloss.Style
	wins   lipgloss.Style
	dealer lipgloss.Style
	muted  lipgloss.Style
}

// NewRenderer creates a renderer for w. With noColor set, or when w is not a
// terminal, output is plain text.
func NewRenderer(w io.Writer, noColor bool) *Renderer {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out: w,
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true),
		label: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		wins: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		dealer: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

// Heading returns the report title for a transport
func Heading(kind transport.Kind) string {
	switch kind {
	case transport.Chan:
		return "CHANNEL IMPLEMENTATION"
	case transport.WebSocket:
		return "WEBSOCKET IMPLEMENTATION"
	default:
		return strings.ToUpper(string(kind)) + " IMPLEMENTATION"
	}
}

// Result prints the session tallies with each actor's win percentage
func (r *Renderer) Result(result *simulator.Result) error {
	s := NewSummary(result)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.header.Render(Heading(result.Transport)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s%d\n", r.label.Render(pad("Games:")), s.Games)
	b.WriteString(rule + "\n")
	r.actorLine(&b, "Player One Wins:", s.PlayerOne, r.wins)
	r.actorLine(&b, "Player Two Wins:", s.PlayerTwo, r.wins)
	r.actorLine(&b, "Dealer Wins:", s.Dealer, r.dealer)
	b.WriteString(r.muted.Render(fmt.Sprintf("scoring %s, seed %d, run %s, %dms",
		s.Scoring, s.Seed, s.RunID, s.ElapsedMS)))
	b.WriteString("\n")

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) actorLine(b *strings.Builder, label string, a ActorSummary, style lipgloss.Style) {
	fmt.Fprintf(b, "%s%s | Win Percentage: %s\n",
		r.label.Render(pad(label)),
		style.Render(fmt.Sprint(a.Wins)),
		FormatPercentage(a.Percentage))
}

// History prints a table of persisted runs, newest first
func (r *Renderer) History(runs []store.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(r.out, r.muted.Render("No runs recorded"))
		return err
	}

	var b strings.Builder
	b.WriteString(r.header.Render(fmt.Sprintf("%-20s %-10s %-10s %7s %7s %7s %7s",
		"STARTED", "TRANSPORT", "SCORING", "GAMES", "P1", "P2", "DEALER")))
	b.WriteString("\n")
	for _, run := range runs {
		fmt.Fprintf(&b, "%-20s %-10s %-10s %7d %7d %7d %7d\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Transport, run.Scoring, run.Rounds,
			run.P1Wins, run.P2Wins, run.DealerWins)
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// FormatPercentage renders a percentage to four significant figures, e.g. "33.1%"
func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.4g%%", p)
}

func pad(label string) string {
	return fmt.Sprintf("%-19s", label)
}
