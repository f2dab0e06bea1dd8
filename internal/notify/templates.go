// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"activity-signup/internal/events"

	"github.com/spf13/viper"
)

// Template is the subject and body sent for one event type.
type Template struct {
	Subject string `mapstructure:"subject"`
	Body    string `mapstructure:"body"`
}

// DefaultTemplates are used for any event type the template file leaves out.
func DefaultTemplates() map[events.Type]Template {
	return map[events.Type]Template{
		events.TypeSignedUp: {
			Subject: "You're signed up for {{activity}}",
			Body:    "Hi {{email}},\n\nYou are now signed up for {{activity}}.\n\nMergington High School",
		},
		events.TypeRemoved: {
			Subject: "You've been removed from {{activity}}",
			Body:    "Hi {{email}},\n\nYou are no longer signed up for {{activity}}.\n\nMergington High School",
		},
	}
}

// LoadTemplates reads templates keyed by event type from a YAML or JSON file
// and merges them over the defaults. An empty path returns the defaults.
func LoadTemplates(path string) (map[events.Type]Template, error) {
	templates := DefaultTemplates()
	if path == "" {
		return templates, nil
	}

	// event types contain dots, so keys must not be split on them
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read templates %s: %w", path, err)
	}

	var raw map[string]Template
	if err := v.UnmarshalKey("templates", &raw); err != nil {
		return nil, fmt.Errorf("decode templates %s: %w", path, err)
	}

	for key, tmpl := range raw {
		t := events.Type(key)
		if t != events.TypeSignedUp && t != events.TypeRemoved {
			return nil, fmt.Errorf("unknown template type: %s", key)
		}
		if tmpl.Subject == "" || tmpl.Body == "" {
			return nil, fmt.Errorf("template %s: subject and body are required", key)
		}
		templates[t] = tmpl
	}
	return templates, nil
}

// renderTemplate replaces {{key}} placeholders and strips any left unresolved.
func renderTemplate(tmpl string, data map[string]string) string {
	result := tmpl
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
