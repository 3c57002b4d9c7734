package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":       {"ctrl+b,?", "show/hide commands"},
	"QuitApp":        {"q", "quit"},
	"AddNote":        {"a", "add note"},
	"EditNote":       {"e", "edit note"},
	"DeleteNote":     {"d", "delete note"},
	"CycleFilter":    {"f", "cycle priority filter"},
	"CycleSort":      {"s", "cycle sort order"},
	"NextPage":       {"right,n", "next page"},
	"PrevPage":       {"left,p", "previous page"},
	"ShowStats":      {"t", "show statistics"},
	"Refresh":        {"r", "reload current page"},
	"Logout":         {"ctrl+l", "log out"},
	"CyclePriority":  {"ctrl+p", "cycle priority in form"},
	"SwitchAuthForm": {"ctrl+r", "switch between login and register"},
}

type KeyMap struct {
	ShowHelp       key.Binding
	QuitApp        key.Binding
	AddNote        key.Binding
	EditNote       key.Binding
	DeleteNote     key.Binding
	CycleFilter    key.Binding
	CycleSort      key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	ShowStats      key.Binding
	Refresh        key.Binding
	Logout         key.Binding
	CyclePriority  key.Binding
	SwitchAuthForm key.Binding
}

// BuildKeyMap applies configOverrides on top of the defaults. Action names
// match case-insensitively since viper lower-cases map keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, def := range KeyDefinitions {
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		binding := parseKeyBinding(keyStr, def.DefaultKey, def.Help)

		switch action {
		case "ShowHelp":
			km.ShowHelp = binding
		case "QuitApp":
			km.QuitApp = binding
		case "AddNote":
			km.AddNote = binding
		case "EditNote":
			km.EditNote = binding
		case "DeleteNote":
			km.DeleteNote = binding
		case "CycleFilter":
			km.CycleFilter = binding
		case "CycleSort":
			km.CycleSort = binding
		case "NextPage":
			km.NextPage = binding
		case "PrevPage":
			km.PrevPage = binding
		case "ShowStats":
			km.ShowStats = binding
		case "Refresh":
			km.Refresh = binding
		case "Logout":
			km.Logout = binding
		case "CyclePriority":
			km.CyclePriority = binding
		case "SwitchAuthForm":
			km.SwitchAuthForm = binding
		}
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if strings.TrimSpace(keyStr) == "" {
		keyStr = defaultKey
	}

	// Multiple keys are separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
