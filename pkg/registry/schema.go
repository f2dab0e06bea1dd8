// pkg/registry/schema.go
package registry

// ActivityRegistry is the seed document the in-memory registry starts from.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"maxParticipants"`
	Participants    []string `json:"participants"`
}
