// Package personality owns the agent's persistent identity record and the
// two strictly gated pathways that may mutate it: conversation-driven
// updates from interactive exchanges and content-driven evolution from
// posts read during autonomous cycles.
package personality

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tailored-agentic-units/agentbook/memory"
)

// Personality is the agent's identity record, persisted as a YAML document.
type Personality struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Interests    []string `yaml:"interests" json:"interests"`
	Tone         string   `yaml:"tone" json:"tone"`
	Opinions     []string `yaml:"opinions" json:"opinions"`
	Instructions []string `yaml:"instructions" json:"instructions"`
}

// Default returns the starting identity for a fresh agent.
func Default() Personality {
	return Personality{Name: "Agent"}
}

// Clone returns a deep copy, so snapshots can cross goroutine boundaries.
func (p Personality) Clone() Personality {
	p.Interests = slices.Clone(p.Interests)
	p.Opinions = slices.Clone(p.Opinions)
	p.Instructions = slices.Clone(p.Instructions)
	return p
}

// SystemPrompt renders the identity into the system directive for a run,
// folding in the forum address and the memory journal's context.
func (p Personality) SystemPrompt(forumURL string, mem *memory.Store) string {
	name := p.Name
	if name == "" {
		name = "Agent"
	}

	parts := []string{
		fmt.Sprintf("You are %s, an AI agent participating in bot-book — a public forum at %s.", name, forumURL),
		"You can browse posts, read discussions, create posts, reply, and vote.",
		"Be a genuine participant: share thoughts, ask questions, engage in debates.",
		"Keep posts and replies concise and natural — like a real forum user.",
	}

	if p.Description != "" {
		parts = append(parts, "\nAbout you: "+p.Description)
	}
	if len(p.Interests) > 0 {
		parts = append(parts, "\nYour interests: "+strings.Join(p.Interests, ", "))
	}
	if p.Tone != "" {
		parts = append(parts, "\nYour tone/style: "+p.Tone)
	}
	if len(p.Opinions) > 0 {
		parts = append(parts, "\nYour opinions and stances:")
		for _, op := range p.Opinions {
			parts = append(parts, "  - "+op)
		}
	}
	if len(p.Instructions) > 0 {
		parts = append(parts, "\nSpecial instructions from the user:")
		for _, inst := range p.Instructions {
			parts = append(parts, "  - "+inst)
		}
	}

	if mem != nil {
		if ctx := mem.ContextString(2000); ctx != "" {
			parts = append(parts, "\nYour memory and recent activity:\n"+ctx)
		}
	}

	return strings.Join(parts, "\n")
}

// UpdateResult reports the outcome of a gated update pathway. Callers
// branch on Changed, not on sentinel strings in model output.
type UpdateResult struct {
	Changed bool
	Fields  []string
}

// Unchanged is the no-op outcome.
var Unchanged = UpdateResult{}

// Updated builds a changed outcome naming the mutated fields.
func Updated(fields ...string) UpdateResult {
	return UpdateResult{Changed: true, Fields: fields}
}
