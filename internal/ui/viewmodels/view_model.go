package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"

	"usersearch/internal/domain"
	"usersearch/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	width       int
	height      int
	help        help.Model
	keys        help.KeyMap
	avatarWidth int
	readyMarker bool

	input       string
	spinner     string
	avatar      string
	notice      string
	status      string
	statusError bool
}

// NewViewModel creates a new view model
func NewViewModel(keys help.KeyMap, avatarWidth int, readyMarker bool) *ViewModel {
	return &ViewModel{
		help:        help.New(),
		keys:        keys,
		avatarWidth: avatarWidth,
		readyMarker: readyMarker,
	}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
	vm.help.Width = width
}

// SetInput sets the rendered text input
func (vm *ViewModel) SetInput(input string) {
	vm.input = input
}

// SetSpinner sets the current spinner frame
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// SetAvatar sets the rendered avatar for the current profile
func (vm *ViewModel) SetAvatar(avatar string) {
	vm.avatar = avatar
}

// SetNotice sets the user-visible notice
func (vm *ViewModel) SetNotice(notice string) {
	vm.notice = notice
}

// SetStatus sets the status line
func (vm *ViewModel) SetStatus(status string, isError bool) {
	vm.status = status
	vm.statusError = isError
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState(state domain.ViewState) views.ViewState {
	vs := views.ViewState{
		Width:       vm.width,
		Height:      vm.height,
		Display:     Project(state),
		Input:       vm.input,
		Notice:      vm.notice,
		Status:      vm.status,
		StatusError: vm.statusError,
		ReadyMarker: vm.readyMarker,
	}
	if vm.keys != nil {
		vs.Help = vm.help.View(vm.keys)
	}
	switch vs.Display.Kind {
	case views.DisplayBusy:
		vs.Spinner = vm.spinner
	case views.DisplayProfile:
		vs.Avatar = vm.avatar
		vs.AvatarWidth = vm.avatarWidth
	}
	return vs
}
