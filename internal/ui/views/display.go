package views

// DisplayKind selects what the result area shows
type DisplayKind int

const (
	DisplayNone DisplayKind = iota
	DisplayBusy
	DisplayProfile
	DisplayText
)

// Display describes the content of the result area
type Display struct {
	Kind       DisplayKind
	Name       string
	Login      string
	AvatarURL  string
	ProfileURL string
	Text       string
}
