// Package persona holds the fixed identities a relay deployment can speak as.
// Prompts are embedded at build time; a process picks exactly one at startup.
package persona

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed prompts/*.txt
var prompts embed.FS

// Generation is the fixed sampling configuration sent with every upstream request.
type Generation struct {
	Temperature     float32
	MaxOutputTokens int32
	TopP            float32
}

type Persona struct {
	Name       string // lookup key, e.g. "odindev"
	Title      string // display name, e.g. "OdinDev Assistant"
	Prompt     string
	Generation Generation
}

var builtin = map[string]Persona{
	"odindev": {
		Name:       "odindev",
		Title:      "OdinDev Assistant",
		Prompt:     mustPrompt("odindev"),
		Generation: Generation{Temperature: 0.7, MaxOutputTokens: 800, TopP: 0.95},
	},
	"syn": {
		Name:       "syn",
		Title:      "Syn",
		Prompt:     mustPrompt("syn"),
		Generation: Generation{Temperature: 0.8, MaxOutputTokens: 500, TopP: 0.95},
	},
	// Terser persona, lower output cap.
	"troll": {
		Name:       "troll",
		Title:      "TROLL",
		Prompt:     mustPrompt("troll"),
		Generation: Generation{Temperature: 0.9, MaxOutputTokens: 300, TopP: 0.95},
	},
}

// Lookup returns the built-in persona with the given name, ignoring case.
func Lookup(name string) (Persona, error) {
	p, ok := builtin[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the built-in personas in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustPrompt(name string) string {
	data, err := prompts.ReadFile("prompts/" + name + ".txt")
	if err != nil {
		panic(fmt.Sprintf("persona prompt %s missing: %v", name, err))
	}
	return strings.TrimSpace(string(data))
}
