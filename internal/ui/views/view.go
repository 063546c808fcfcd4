package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Display     Display
	Input       string // rendered text input
	Spinner     string // current spinner frame
	Avatar      string // rendered avatar, empty when unavailable
	AvatarWidth int
	Notice      string
	Status      string
	StatusError bool
	Help        string
	ReadyMarker bool
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// Styles exposes the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	if state.ReadyMarker {
		content.WriteString("__READY__\n")
	}
	content.WriteString(r.styles.Title.Render("usersearch"))
	content.WriteString("\n")

	if result := r.RenderResult(state); result != "" {
		content.WriteString(result)
		content.WriteString("\n")
	}

	inputWidth := state.Width - 8 // main padding plus input border
	if inputWidth > 48 {
		inputWidth = 48
	}
	inputStyle := r.styles.Input
	if inputWidth > 0 {
		inputStyle = inputStyle.Width(inputWidth)
	}
	content.WriteString(inputStyle.Render(state.Input))

	if state.Notice != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Notice.Render(state.Notice))
	}

	if state.Status != "" {
		style := r.styles.Status
		if state.StatusError {
			style = style.Foreground(r.styles.Error.GetForeground())
		}
		content.WriteString("\n")
		content.WriteString(style.Render(state.Status))
	}

	if state.Help != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.Help.Render(state.Help))
	}

	return r.styles.Main.Render(content.String())
}

// RenderResult renders the result area, or "" when there is nothing to show
func (r *Renderer) RenderResult(state ViewState) string {
	d := state.Display
	var body string
	switch d.Kind {
	case DisplayNone:
		return ""
	case DisplayBusy:
		body = r.styles.Busy.Render(strings.TrimSpace(state.Spinner + " Searching..."))
	case DisplayText:
		body = r.styles.NotFound.Render(d.Text)
	case DisplayProfile:
		lines := []string{}
		if state.Avatar != "" {
			lines = append(lines, state.Avatar)
		} else if d.AvatarURL != "" {
			lines = append(lines, r.styles.Dim.Render(d.AvatarURL))
		}
		lines = append(lines, r.styles.Name.Render(d.Name))
		if d.Login != "" && d.Login != d.Name {
			lines = append(lines, r.styles.Dim.Render("@"+d.Login))
		}
		if d.ProfileURL != "" {
			lines = append(lines, r.styles.Link.Render(d.ProfileURL))
		}
		body = lipgloss.JoinVertical(lipgloss.Center, lines...)
	}

	box := r.styles.ResultBox
	if state.AvatarWidth > 0 && lipgloss.Width(body) < state.AvatarWidth {
		box = box.Width(state.AvatarWidth + 2)
	}
	return box.Render(body)
}
