//go:build e2e && unix

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type directoryUser struct {
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}

// fakeDirectory serves the subset of the GitHub users API the app calls
type fakeDirectory struct {
	*httptest.Server
	users    map[string]directoryUser
	delay    time.Duration
	requests atomic.Int32
}

func newFakeDirectory(t *testing.T, users ...directoryUser) *fakeDirectory {
	t.Helper()
	return newSlowDirectory(t, 0, users...)
}

// newSlowDirectory answers every request after delay
func newSlowDirectory(t *testing.T, delay time.Duration, users ...directoryUser) *fakeDirectory {
	t.Helper()
	d := &fakeDirectory{users: make(map[string]directoryUser), delay: delay}
	for _, u := range users {
		d.users[u.Login] = u
	}
	d.Server = httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(d.Close)
	return d
}

func (d *fakeDirectory) serve(w http.ResponseWriter, r *http.Request) {
	d.requests.Add(1)
	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	login, ok := strings.CutPrefix(r.URL.Path, "/users/")
	user, found := d.users[login]
	w.Header().Set("Content-Type", "application/json")
	if !ok || !found {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		return
	}
	_ = json.NewEncoder(w).Encode(user)
}

var octocat = directoryUser{
	Login:     "octocat",
	Name:      "The Octocat",
	AvatarURL: "https://avatars.example.invalid/u/583231",
	HTMLURL:   "https://github.com/octocat",
}
