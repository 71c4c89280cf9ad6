package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
)

// SnapshotMsg delivers a tracker change to the tracking view.
type SnapshotMsg txflow.Snapshot

// TrackDoneMsg is sent when watching stops, settled or not.
type TrackDoneMsg struct {
	Snapshot txflow.Snapshot
	Err      error
}

// TrackModel is the Bubble Tea model for the live transfer status view.
type TrackModel struct {
	Snapshot    txflow.Snapshot
	Err         error // watch error, e.g. the track deadline
	Done        bool
	Interrupted bool
	frame       int
	flash       string
	open        func(string) error
}

// NewTrackModel starts the view at s.
func NewTrackModel(s txflow.Snapshot) TrackModel {
	return TrackModel{Snapshot: s, open: OpenURL}
}

type trackTickMsg struct{}

func trackTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return trackTickMsg{}
	})
}

func (m TrackModel) Init() tea.Cmd { return trackTick() }

func (m TrackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Interrupted = !m.Done
			return m, tea.Quit
		case "o":
			links := txflow.Present(m.Snapshot).Links
			if len(links) == 0 {
				m.flash = "No explorer for this network"
				break
			}
			if err := m.open(links[0].URL); err != nil {
				m.flash = "Could not open browser: " + err.Error()
			} else {
				m.flash = "Opening " + links[0].Name + "…"
			}
		}

	case trackTickMsg:
		if m.Done {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, trackTick()

	case SnapshotMsg:
		m.Snapshot = txflow.Snapshot(msg)

	case TrackDoneMsg:
		m.Snapshot = msg.Snapshot
		m.Err = msg.Err
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m TrackModel) View() string {
	v := txflow.Present(m.Snapshot)
	var sb strings.Builder

	title := "Transfer status"
	if !m.Done {
		title = spinnerFrames[m.frame] + " " + title
	}
	sb.WriteString(StyleTitle.Render(title) + "\n")
	sb.WriteString(TxPanel(v) + "\n")

	if m.Done && m.Err != nil {
		sb.WriteString(Warn(fmt.Sprintf("Stopped watching: %v", m.Err)) + "\n")
		sb.WriteString(Hint("Resume with: w3mvp track "+v.Hash.Hex()) + "\n")
	}
	if m.Done {
		return sb.String()
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleInfo.Render("  " + m.flash))
	} else {
		sb.WriteString(StyleInfo.Render("[ o ]") + StyleMeta.Render(" open in explorer   ") +
			StyleMeta.Render("[ q ] stop watching"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// RunTrack shows the tracking view while watch runs against tr. Quitting the
// view cancels watch. The returned error is the watch error, if watching
// ended before settlement.
func RunTrack(ctx context.Context, tr *txflow.Tracker, watch func(context.Context) (txflow.Snapshot, error), opts ...tea.ProgramOption) (txflow.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewTrackModel(tr.Snapshot()), opts...)
	tr.OnChange(func(s txflow.Snapshot) { p.Send(SnapshotMsg(s)) })
	defer tr.OnChange(nil)

	go func() {
		snap, err := watch(ctx)
		p.Send(TrackDoneMsg{Snapshot: snap, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return tr.Snapshot(), fmt.Errorf("tracking view: %w", err)
	}
	fm := final.(TrackModel)
	if fm.Interrupted {
		return tr.Snapshot(), context.Canceled
	}
	return fm.Snapshot, fm.Err
}
