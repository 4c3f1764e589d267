package cli

import (
	"fmt"
	"strings"

	"github.com/brendan.keane/oauthhttp/internal/command"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B47E0")).
			Padding(0, 2)

	kindStyles = map[command.Kind]lipgloss.Style{
		command.KindGET: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#61AFEF")).
			Padding(0, 1),
		command.KindPOST: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#98C379")).
			Padding(0, 1),
	}

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#61AFEF")).
			Bold(true).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF"))

	argStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98C379"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B47E0")).
			Padding(0, 1).
			MarginTop(1)
)

// Sample values substituted into the template preview
const (
	sampleURL  = "https://auth.example.com/oauth/token"
	sampleBody = "grant_type=client_credentials&scope=read"
)

// renderTemplate describes a resolved template and the argv it produces for
// the sample request
func renderTemplate(tpl *command.Template, sample *command.Command) string {
	var output strings.Builder

	output.WriteString(titleStyle.Render(" HTTP command template "))
	output.WriteString(" ")
	output.WriteString(kindStyles[tpl.Kind].Render(tpl.Kind.String()))
	output.WriteString("\n\n")

	source := tpl.Source
	if source == command.SourceOverride {
		source = fmt.Sprintf("%s (%s)", source, tpl.EnvVar)
	}

	rows := [][2]string{
		{"Template", tpl.Raw},
		{"Source", source},
		{"Order", tpl.Order.String()},
	}
	for _, row := range rows {
		output.WriteString(labelStyle.Render(row[0]))
		output.WriteString(valueStyle.Render(row[1]))
		output.WriteString("\n")
	}

	var args strings.Builder
	for i, arg := range sample.Args {
		fmt.Fprintf(&args, "argv[%d] %s", i, argStyle.Render(fmt.Sprintf("%q", arg)))
		if i < len(sample.Args)-1 {
			args.WriteString("\n")
		}
	}
	output.WriteString(boxStyle.Render(args.String()))
	output.WriteString("\n")

	return output.String()
}
