package ui

import (
	"strings"

	"github.com/Mohsinsiddi/w3mvp/internal/txflow"
)

// Notice renders a form notice as a single styled line.
func Notice(n txflow.Notice) string {
	if n.Kind == txflow.NoticeSuccess {
		return Success(n.Text)
	}
	return Err(n.Text)
}

// TxPanel renders a presenter view as a bordered status block. An invisible
// view renders as the empty string.
func TxPanel(v txflow.View) string {
	if !v.Visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(statusBadge(v) + "  " + v.Message + "\n")
	sb.WriteString(Meta("Tx hash:  ") + Addr(v.Hash.Hex()) + "\n")
	if v.ReplacementText != "" {
		sb.WriteString(Meta("Original: ") + Addr(v.OriginalHash.Hex()) + "\n")
		sb.WriteString(Meta("Update:   ") + StyleWarning.Render(v.ReplacementText) + "\n")
	}
	for _, l := range v.Links {
		sb.WriteString(Meta(l.Name+": ") + StyleInfo.Render(l.URL) + "\n")
	}
	if v.Hint != "" {
		sb.WriteString(Hint(v.Hint) + "\n")
	}
	return StyleBorder.Render(strings.TrimRight(sb.String(), "\n"))
}

func statusBadge(v txflow.View) string {
	switch v.Status {
	case txflow.StatusSuccess:
		return StyleSuccess.Render("● " + v.Label)
	case txflow.StatusError:
		return StyleError.Render("● " + v.Label)
	}
	return StyleWarning.Render("● " + v.Label)
}
