package views

import "strings"

// RenderPlain renders d without styling, for non-interactive output
func RenderPlain(d Display) string {
	switch d.Kind {
	case DisplayBusy:
		return "Searching..."
	case DisplayText:
		return d.Text
	case DisplayProfile:
		lines := []string{d.Name}
		if d.Login != "" && d.Login != d.Name {
			lines = append(lines, "@"+d.Login)
		}
		if d.AvatarURL != "" {
			lines = append(lines, "avatar:  "+d.AvatarURL)
		}
		if d.ProfileURL != "" {
			lines = append(lines, "profile: "+d.ProfileURL)
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}
