package domain

// UserRecord is the result of a successful user lookup
type UserRecord struct {
	Login      string
	Name       string
	AvatarURL  string
	ProfileURL string
}

// DisplayName returns the public name, or the login when no name is set
func (u UserRecord) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// ViewKind tags the variant held by a ViewState
type ViewKind int

const (
	ViewIdle ViewKind = iota
	ViewPending
	ViewFound
	ViewNotFound
)

func (k ViewKind) String() string {
	switch k {
	case ViewIdle:
		return "Idle"
	case ViewPending:
		return "Pending"
	case ViewFound:
		return "Found"
	case ViewNotFound:
		return "NotFound"
	default:
		return "Unknown"
	}
}

// ViewState describes what the result area currently shows.
// Record is set only when Kind is ViewFound.
type ViewState struct {
	Kind   ViewKind
	Record *UserRecord
}

// Idle is the state before the first submit
func Idle() ViewState { return ViewState{Kind: ViewIdle} }

// Pending is the state while a lookup is in flight
func Pending() ViewState { return ViewState{Kind: ViewPending} }

// Found holds a copy of the looked up record
func Found(rec UserRecord) ViewState {
	return ViewState{Kind: ViewFound, Record: &rec}
}

// NotFound is the state after an empty or failed lookup
func NotFound() ViewState { return ViewState{Kind: ViewNotFound} }

// IsPending reports whether a lookup is in flight
func (s ViewState) IsPending() bool { return s.Kind == ViewPending }

func (s ViewState) String() string {
	if s.Kind == ViewFound && s.Record != nil {
		return "Found(" + s.Record.Login + ")"
	}
	return s.Kind.String()
}
