package tui

import (
	"fmt"
	"strings"

	"dayplan-cli/internal/model"
	"dayplan-cli/internal/planner"

	"github.com/charmbracelet/lipgloss"
)

const userRequestMarker = "User request: "

// displayContent strips the injected date-context block from outgoing user
// messages so the transcript shows what the user actually typed.
func displayContent(msg model.ChatMessage) string {
	if msg.Role != model.RoleUser {
		return msg.Content
	}
	if i := strings.Index(msg.Content, userRequestMarker); i >= 0 {
		return msg.Content[i+len(userRequestMarker):]
	}
	return msg.Content
}

func (m appModel) viewChatPage() string {
	if m.planner == nil {
		return ""
	}

	wrapW := m.width - 4
	if wrapW > 80 {
		wrapW = 80
	}
	if wrapW < 20 {
		wrapW = 20
	}

	var blocks []string
	youStyle := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	botStyle := lipgloss.NewStyle().Bold(true)
	for _, msg := range m.planner.Messages() {
		if msg.Role == model.RoleUser {
			blocks = append(blocks, youStyle.Render("You")+"\n"+displayContent(msg))
		} else {
			blocks = append(blocks, botStyle.Render("Planner")+"\n"+renderMarkdown(msg.Content, wrapW))
		}
	}
	if m.planner.State() == planner.StateSending {
		blocks = append(blocks, m.spin.View()+" "+styleMuted().Render("Thinking…"))
	}

	transcript := strings.Join(blocks, "\n\n")

	// Bottom-anchor the transcript; chatScroll counts lines scrolled up.
	inputH := 5
	stagedBox := m.viewStagedBatch(wrapW)
	stagedH := 0
	if stagedBox != "" {
		stagedH = strings.Count(stagedBox, "\n") + 2
	}
	transcriptH := m.height - inputH - stagedH - 6
	if transcriptH < 5 {
		transcriptH = 5
	}
	lines := strings.Split(transcript, "\n")
	end := len(lines) - m.chatScroll
	if end > len(lines) {
		end = len(lines)
	}
	if end < 0 {
		end = 0
	}
	start := end - transcriptH
	if start < 0 {
		start = 0
	}
	visible := strings.Join(lines[start:end], "\n")

	parts := []string{visible}
	if stagedBox != "" {
		parts = append(parts, stagedBox)
	}
	parts = append(parts, m.chatInput.View())
	return strings.Join(parts, "\n\n")
}

// viewStagedBatch previews the AI-proposed tasks awaiting confirmation.
func (m appModel) viewStagedBatch(width int) string {
	staged := m.planner.Staged()
	if len(staged) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Proposed plan (%d tasks)", len(staged))) + "\n")
	for _, t := range staged {
		line := glyphDot() + " " + t.Title
		if !t.ScheduledFor.IsZero() {
			line += styleMuted().Render("  " + t.ScheduledFor.String())
		}
		if t.ExpectedTimeMinutes > 0 {
			line += styleMuted().Render(fmt.Sprintf("  %d min", t.ExpectedTimeMinutes))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(styleMuted().Render("ctrl+s: save this plan"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1).
		Width(width).
		Render(b.String())
}
