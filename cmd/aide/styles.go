package main

import "github.com/charmbracelet/lipgloss"

// Terminal styles for the chat loop and listings.
var (
	styleBanner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	styleAssistant = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	styleTool = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Faint(true)

	styleCost = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Faint(true)

	styleErr = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// banner returns the chat greeting shown at startup.
func banner(sessionID string, resumed bool) string {
	head := styleBanner.Render("aide | personal assistant")
	mode := "new session"
	if resumed {
		mode = "resumed session"
	}
	return head + "\n" + styleTool.Render(mode+" "+sessionID) + "\n" +
		styleTool.Render("type /help for commands, /exit to quit") + "\n"
}
