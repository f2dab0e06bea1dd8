// internal/models/activity.go
package models

import (
	"bytes"
	"encoding/json"
)

// Activity is the registry's internal record. Participants keeps signup order.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// ActivityView is the wire shape of one activity in GET /activities.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// ActivityCatalog is the GET /activities body: activities keyed by name,
// encoded in the order they were added.
type ActivityCatalog struct {
	names []string
	views map[string]ActivityView
}

func NewActivityCatalog(size int) ActivityCatalog {
	return ActivityCatalog{
		names: make([]string, 0, size),
		views: make(map[string]ActivityView, size),
	}
}

// Add appends an activity. Adding an existing name replaces its view in place.
func (c *ActivityCatalog) Add(name string, view ActivityView) {
	if c.views == nil {
		c.views = make(map[string]ActivityView)
	}
	if _, ok := c.views[name]; !ok {
		c.names = append(c.names, name)
	}
	c.views[name] = view
}

func (c ActivityCatalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c ActivityCatalog) Len() int { return len(c.names) }

func (c ActivityCatalog) Lookup(name string) (ActivityView, bool) {
	v, ok := c.views[name]
	return v, ok
}

func (c ActivityCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.views[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SignupResult confirms a signup or a removal.
type SignupResult struct {
	Message  string `json:"message"`
	Activity string `json:"-"`
	Email    string `json:"-"`
}

// ErrorDetail is the body of every client or server error response.
type ErrorDetail struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// View copies the activity into its wire shape.
func (a *Activity) View() ActivityView {
	participants := make([]string, len(a.Participants))
	copy(participants, a.Participants)
	return ActivityView{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}

// HasParticipant reports whether email is already signed up.
func (a *Activity) HasParticipant(email string) bool {
	return a.indexOf(email) >= 0
}

func (a *Activity) indexOf(email string) int {
	for i, p := range a.Participants {
		if p == email {
			return i
		}
	}
	return -1
}

// RemoveParticipant drops email and reports whether it was present.
func (a *Activity) RemoveParticipant(email string) bool {
	i := a.indexOf(email)
	if i < 0 {
		return false
	}
	a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	return true
}
