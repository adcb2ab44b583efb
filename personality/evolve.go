package personality

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/agentbook/agent"
	"github.com/tailored-agentic-units/agentbook/core/protocol"
)

// noUpdate is the model-facing marker for "leave the identity alone". It is
// matched in model output only; callers see typed UpdateResults.
const noUpdate = "NO_UPDATE"

// maxEvolutionPosts caps how much read content one evolution pass considers.
const maxEvolutionPosts = 10

const exchangeSystem = "You analyze conversations to extract personality traits and instructions."

const evolveSystem = "You strictly evaluate whether posts contain genuinely compelling points " +
	"worth absorbing into a personality. You almost always return NO_UPDATE."

// UpdateFromExchange asks the model whether one interactive exchange should
// reshape the identity. Only keys already present in the personality schema
// are accepted; empty values are ignored; any parse failure is a no-op.
func (m *Manager) UpdateFromExchange(ctx context.Context, llm agent.Agent, userMessage, agentReply string) (UpdateResult, error) {
	current, err := json.MarshalIndent(m.Snapshot(), "", "  ")
	if err != nil {
		return Unchanged, err
	}

	prompt := fmt.Sprintf(
		"Current personality:\n%s\n\n"+
			"User said: %s\n"+
			"Agent replied: %s\n\n"+
			"Based on this exchange, should the personality be updated? "+
			"The user might be shaping the agent's identity, interests, tone, or giving instructions.\n\n"+
			"If updates are needed, return ONLY a JSON object with the updated personality fields. "+
			"Keep existing values unless explicitly changed. "+
			"If no updates needed, return exactly: %s\n\n"+
			"Fields: name (string), description (string), interests (list of strings), "+
			"tone (string), opinions (list of strings), instructions (list of strings)",
		current, userMessage, agentReply, noUpdate,
	)

	result, err := llm.Chat(ctx, []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, exchangeSystem),
		protocol.NewMessage(protocol.RoleUser, prompt),
	})
	if err != nil {
		return Unchanged, err
	}
	if strings.Contains(result, noUpdate) {
		return Unchanged, nil
	}

	var updates struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Interests    []string `json:"interests"`
		Tone         string   `json:"tone"`
		Opinions     []string `json:"opinions"`
		Instructions []string `json:"instructions"`
	}
	if !decodeObject(result, &updates) {
		return Unchanged, nil
	}

	return m.apply(ctx, func(p *Personality) UpdateResult {
		var fields []string
		if updates.Name != "" {
			p.Name = updates.Name
			fields = append(fields, "name")
		}
		if updates.Description != "" {
			p.Description = updates.Description
			fields = append(fields, "description")
		}
		if len(updates.Interests) > 0 {
			p.Interests = updates.Interests
			fields = append(fields, "interests")
		}
		if updates.Tone != "" {
			p.Tone = updates.Tone
			fields = append(fields, "tone")
		}
		if len(updates.Opinions) > 0 {
			p.Opinions = updates.Opinions
			fields = append(fields, "opinions")
		}
		if len(updates.Instructions) > 0 {
			p.Instructions = updates.Instructions
			fields = append(fields, "instructions")
		}
		if len(fields) == 0 {
			return Unchanged
		}
		return Updated(fields...)
	}), nil
}

// EvolveFromPosts evaluates posts read during a cycle for personality
// influence. The bar is deliberately strict: most content must produce no
// change. Accepted updates may only touch interests and opinions, and
// never discard a value the identity already holds — prior identity is
// extended, not replaced.
func (m *Manager) EvolveFromPosts(ctx context.Context, llm agent.Agent, posts []string) (UpdateResult, error) {
	if len(posts) == 0 {
		return Unchanged, nil
	}
	if len(posts) > maxEvolutionPosts {
		posts = posts[:maxEvolutionPosts]
	}

	snapshot := m.Snapshot()
	interests, err := json.MarshalIndent(snapshot.Interests, "", "  ")
	if err != nil {
		return Unchanged, err
	}
	opinions, err := json.MarshalIndent(snapshot.Opinions, "", "  ")
	if err != nil {
		return Unchanged, err
	}

	prompt := fmt.Sprintf(
		"Current interests:\n%s\n\n"+
			"Current opinions:\n%s\n\n"+
			"Posts read this cycle:\n%s\n\n"+
			"You are evaluating whether any of these posts should influence this agent's personality.\n\n"+
			"SET A VERY HIGH BAR. Most posts should result in %s.\n"+
			"Only update if a post makes a genuinely strong, well-argued, thought-provoking point "+
			"that would meaningfully shift this agent's thinking or introduce a new deep interest.\n\n"+
			"Examples of what QUALIFIES:\n"+
			"- A compelling argument that challenges an existing opinion\n"+
			"- An insight that opens a genuinely new area of interest\n"+
			"- A well-reasoned stance the agent hadn't considered\n\n"+
			"Examples of what does NOT qualify:\n"+
			"- Generic opinions or mild takes\n"+
			"- Anything the agent already believes or is interested in\n"+
			"- Casual conversation, jokes, or questions without substance\n"+
			"- Short or low-effort posts\n\n"+
			"You may ONLY modify:\n"+
			"- interests: add new ones (do not remove existing)\n"+
			"- opinions: add new or modify existing stances\n\n"+
			"If any update is warranted, return ONLY a JSON object like:\n"+
			"{\"interests\": [\"existing1\", \"existing2\", \"new_interest\"], "+
			"\"opinions\": [\"existing1\", \"modified_or_new_opinion\"]}\n\n"+
			"Include ALL existing values plus any additions/modifications.\n"+
			"If no update is warranted (the usual case), return exactly: %s",
		interests, opinions, strings.Join(posts, "\n\n---\n\n"), noUpdate, noUpdate,
	)

	result, err := llm.Chat(ctx, []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, evolveSystem),
		protocol.NewMessage(protocol.RoleUser, prompt),
	})
	if err != nil {
		return Unchanged, err
	}
	if strings.Contains(result, noUpdate) {
		return Unchanged, nil
	}

	// Restricted two-key shape; anything else is a no-op.
	var updates struct {
		Interests []string `json:"interests"`
		Opinions  []string `json:"opinions"`
	}
	if !decodeObject(result, &updates) {
		return Unchanged, nil
	}

	return m.apply(ctx, func(p *Personality) UpdateResult {
		var fields []string
		if merged, changed := mergeAdditive(p.Interests, updates.Interests); changed {
			p.Interests = merged
			fields = append(fields, "interests")
		}
		if merged, changed := mergeAdditive(p.Opinions, updates.Opinions); changed {
			p.Opinions = merged
			fields = append(fields, "opinions")
		}
		if len(fields) == 0 {
			return Unchanged
		}
		return Updated(fields...)
	}), nil
}

// mergeAdditive combines the model's replacement list with the existing
// values, guaranteeing every existing value survives. The model is
// instructed to echo existing values back; when it does, the merge is just
// the model's list.
func mergeAdditive(existing, proposed []string) (merged []string, changed bool) {
	if len(proposed) == 0 {
		return existing, false
	}

	seen := make(map[string]bool, len(proposed))
	for _, v := range proposed {
		if v != "" && !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}
	for _, v := range existing {
		if !seen[v] {
			seen[v] = true
			merged = append(merged, v)
		}
	}

	if len(merged) != len(existing) {
		return merged, true
	}
	for i := range merged {
		if merged[i] != existing[i] {
			return merged, true
		}
	}
	return existing, false
}

// decodeObject extracts the outermost JSON object from model output and
// unmarshals it into dst. Returns false on any parse failure.
func decodeObject(text string, dst any) bool {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return false
	}
	return json.Unmarshal([]byte(text[start:end+1]), dst) == nil
}
