package ui

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"usersearch/internal/avatar"
	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
	"usersearch/internal/search"
	"usersearch/internal/ui/viewmodels"
	"usersearch/internal/ui/views"
)

// GitHub logins are at most 39 characters
const maxUsernameLength = 39

// AvatarFetcher downloads avatar images
type AvatarFetcher interface {
	Fetch(ctx context.Context, url string) (image.Image, error)
}

// Options configures the UI model
type Options struct {
	// Avatars downloads profile pictures; nil shows the URL instead
	Avatars     AvatarFetcher
	AvatarWidth int
	// ReadyMarker prints a marker line used by end-to-end tests
	ReadyMarker bool
	Log         logr.Logger
}

// Model is the bubbletea model for the search screen
type Model struct {
	ctx  context.Context
	ctrl *search.Controller
	opts Options
	log  logr.Logger

	input   textinput.Model
	spinner spinner.Model
	keys    keyMap

	// rendered avatar of the current profile
	avatar string

	status      string
	statusError bool

	viewModel *viewmodels.ViewModel
	renderer  *views.Renderer
}

// NewModel creates the UI model around ctrl. ctx bounds every lookup
// started from the UI.
func NewModel(ctx context.Context, ctrl *search.Controller, opts Options) *Model {
	if opts.AvatarWidth <= 0 {
		opts.AvatarWidth = 20
	}
	if opts.Log.GetSink() == nil {
		opts.Log = logr.Discard()
	}

	ti := textinput.New()
	ti.Placeholder = "Search for a username"
	ti.Prompt = "> "
	ti.CharLimit = maxUsernameLength
	ti.Width = maxUsernameLength + 1
	ti.SetValue(ctrl.Query())
	ti.Focus()

	renderer := views.NewRenderer()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(renderer.Styles().Busy),
	)

	m := &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		log:      opts.Log.WithName("ui"),
		input:    ti,
		spinner:  sp,
		keys:     newKeyMap(),
		renderer: renderer,
	}
	// the help line reads m.keys so disabled bindings drop out of it
	m.viewModel = viewmodels.NewViewModel(&m.keys, opts.AvatarWidth, opts.ReadyMarker)
	m.syncKeys()
	return m
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewModel.SetDimensions(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.ctrl.Reset()
			m.clearResult()
			m.syncKeys()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != m.ctrl.Query() {
			m.ctrl.SetQuery(v)
			m.ctrl.ClearNotice()
		}
		return m, cmd

	case lookupResultMsg:
		if !m.ctrl.Resolve(msg.result) {
			return m, nil
		}
		m.syncKeys()
		if m.input.Value() != m.ctrl.Query() {
			m.input.SetValue(m.ctrl.Query())
		}
		if err := m.ctrl.LastError(); err != nil {
			m.setStatus(describeError(err), true)
		}
		return m, m.fetchAvatar()

	case avatarMsg:
		state := m.ctrl.State()
		if state.Kind != domain.ViewFound || state.Record.AvatarURL != msg.url {
			return m, nil
		}
		if msg.err != nil {
			m.log.V(1).Info("avatar unavailable", "url", msg.url, "error", msg.err.Error())
			return m, nil
		}
		m.avatar = msg.rendered
		return m, nil

	case spinner.TickMsg:
		// the tick chain ends once the lookup has settled
		if !m.ctrl.State().IsPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model
func (m *Model) View() string {
	m.viewModel.SetInput(m.input.View())
	m.viewModel.SetSpinner(m.spinner.View())
	m.viewModel.SetAvatar(m.avatar)
	m.viewModel.SetNotice(m.ctrl.Notice())
	m.viewModel.SetStatus(m.status, m.statusError)

	return m.renderer.Render(m.viewModel.BuildViewState(m.ctrl.State()))
}

func (m *Model) submit() tea.Cmd {
	req, err := m.ctrl.Submit()
	if err != nil {
		// the controller has already set the notice for an empty query
		return nil
	}
	m.clearResult()
	m.syncKeys()

	ctx, ctrl := m.ctx, m.ctrl
	lookup := func() tea.Msg {
		return lookupResultMsg{result: ctrl.Run(ctx, req)}
	}
	return tea.Batch(lookup, m.spinner.Tick)
}

func (m *Model) fetchAvatar() tea.Cmd {
	state := m.ctrl.State()
	if m.opts.Avatars == nil || state.Kind != domain.ViewFound || state.Record.AvatarURL == "" {
		return nil
	}

	ctx, fetcher := m.ctx, m.opts.Avatars
	url, width := state.Record.AvatarURL, m.opts.AvatarWidth
	return func() tea.Msg {
		img, err := fetcher.Fetch(ctx, url)
		if err != nil {
			return avatarMsg{url: url, err: err}
		}
		return avatarMsg{url: url, rendered: avatar.Render(img, width)}
	}
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.LookupFailedEvent:
		m.setStatus(describeError(ev.Err), true)
	case eventbus.LookupDiscardedEvent:
		m.setStatus(fmt.Sprintf("ignored stale result for %q", ev.Username), false)
	case eventbus.ConfigSavedEvent:
		m.setStatus("config written to "+ev.Path, false)
	}
}

func (m *Model) clearResult() {
	m.avatar = ""
	m.setStatus("", false)
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.statusError = isError
}

// syncKeys disables submit while a lookup is in flight
func (m *Model) syncKeys() {
	m.keys.Submit.SetEnabled(!m.ctrl.State().IsPending())
}

func describeError(err error) string {
	var te *domain.TransportError
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "lookup timed out"
	case errors.As(err, &te) && te.Status != 0:
		return fmt.Sprintf("lookup failed: directory returned status %d", te.Status)
	default:
		return "lookup failed: " + err.Error()
	}
}
