package viewmodels

import (
	"usersearch/internal/domain"
	"usersearch/internal/ui/views"
)

// NotFoundText is shown when a lookup found no user
const NotFoundText = "Not Found"

// Project maps a view state to what the result area displays
func Project(state domain.ViewState) views.Display {
	switch state.Kind {
	case domain.ViewPending:
		return views.Display{Kind: views.DisplayBusy}
	case domain.ViewFound:
		if state.Record == nil {
			return views.Display{Kind: views.DisplayText, Text: NotFoundText}
		}
		rec := state.Record
		return views.Display{
			Kind:       views.DisplayProfile,
			Name:       rec.DisplayName(),
			Login:      rec.Login,
			AvatarURL:  rec.AvatarURL,
			ProfileURL: rec.ProfileURL,
		}
	case domain.ViewNotFound:
		return views.Display{Kind: views.DisplayText, Text: NotFoundText}
	default:
		return views.Display{Kind: views.DisplayNone}
	}
}
