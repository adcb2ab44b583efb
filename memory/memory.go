// Package memory implements the agent's durable activity journal: which
// posts it has read, replied to, and created, the votes it has cast, the
// bots it has interacted with, and a bounded log of cycle summaries. The
// journal is append/merge-only with bounded trimming; nothing is ever
// explicitly deleted. It both biases strategy selection and feeds context
// into the system prompt.
package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxCycleSummaries = 50
	maxBotNotes       = 5

	replyExcerptLen = 100
	noteExcerptLen  = 60

	// neverValue is reported by the cycles-since queries when the event has
	// never happened; large enough to trip every threshold.
	neverValue = 999
)

// PostCreated records one post authored by the agent.
type PostCreated struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// BotRelationship tracks the agent's history with one peer bot.
type BotRelationship struct {
	FirstSeen        string   `json:"first_seen"`
	LastSeen         string   `json:"last_seen"`
	InteractionCount int      `json:"interaction_count"`
	TopicsDiscussed  []string `json:"topics_discussed"`
	Notes            []string `json:"notes"`
}

// CycleSummary records the outcome of one autonomous cycle.
type CycleSummary struct {
	Cycle     int      `json:"cycle"`
	Timestamp string   `json:"timestamp"`
	Actions   []string `json:"actions"`
	Summary   string   `json:"summary"`
}

// Stats is a point-in-time snapshot of journal sizes.
type Stats struct {
	PostsRead    int
	PostsReplied int
	PostsCreated int
	VotesCast    int
	BotsKnown    int
}

// Store is the process-wide activity journal, one instance per agent
// identity. All methods are safe for concurrent use; the cycle
// orchestrator, the interactive surface, and tool handlers all mutate it.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	postsRead    map[int]string // post id -> last read timestamp
	postsReplied map[int]string // target id -> reply excerpt (permanent dedup guard)
	repliedOrder []int          // insertion order of postsReplied keys
	postsCreated []PostCreated
	votesCast    map[string]int // "post:<id>" / "reply:<id>" -> last value
	bots         map[string]*BotRelationship
	summaries    []CycleSummary
	cycleCount   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty journal.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:          time.Now,
		postsRead:    make(map[int]string),
		postsReplied: make(map[int]string),
		votesCast:    make(map[string]int),
		bots:         make(map[string]*BotRelationship),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) timestamp() string {
	return s.now().Format(time.RFC3339)
}

// VoteKey builds the composite votes_cast key for a post or reply target.
func VoteKey(kind string, id int) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// RecordRead notes that a post was read, updating relationships for any
// bots seen in the thread.
func (s *Store) RecordRead(postID int, botsSeen []string, topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postsRead[postID] = s.timestamp()
	for _, name := range botsSeen {
		s.updateBot(name, topics, "")
	}
}

// RecordCreated appends a post authored by the agent.
func (s *Store) RecordCreated(postID int, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.postsCreated = append(s.postsCreated, PostCreated{
		ID:        postID,
		Title:     title,
		Timestamp: s.timestamp(),
	})
}

// RecordReplied marks a post or reply target as replied to, keeping a
// truncated excerpt of the reply body as dedup guard and context hint.
// Once recorded the target is never again eligible for an autonomous reply.
func (s *Store) RecordReplied(targetID int, body string, botsSeen []string, topics []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.postsReplied[targetID]; !seen {
		s.repliedOrder = append(s.repliedOrder, targetID)
	}
	s.postsReplied[targetID] = truncate(body, replyExcerptLen)

	note := "Replied: " + truncate(body, noteExcerptLen)
	for _, name := range botsSeen {
		s.updateBot(name, topics, note)
	}
}

// RecordVote stores the last cast value for a target key. Re-voting
// overwrites, it does not duplicate.
func (s *Store) RecordVote(key string, value int) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votesCast[key] = value
}

// RecordBotsSeen updates relationships for bots seen without topical
// context (e.g. while checking notifications).
func (s *Store) RecordBotsSeen(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.updateBot(name, nil, "")
	}
}

func (s *Store) updateBot(name string, topics []string, note string) {
	if name == "" {
		return
	}
	now := s.timestamp()

	bot, exists := s.bots[name]
	if !exists {
		bot = &BotRelationship{FirstSeen: now}
		s.bots[name] = bot
	}
	bot.LastSeen = now
	bot.InteractionCount++

	for _, t := range topics {
		if t == "" {
			continue
		}
		if !contains(bot.TopicsDiscussed, t) {
			bot.TopicsDiscussed = append(bot.TopicsDiscussed, t)
		}
	}

	if note != "" {
		bot.Notes = append(bot.Notes, note)
		if len(bot.Notes) > maxBotNotes {
			bot.Notes = bot.Notes[len(bot.Notes)-maxBotNotes:]
		}
	}
}

// AddCycleSummary appends one cycle's outcome, trimming to the most
// recent entries.
func (s *Store) AddCycleSummary(cycle int, actions []string, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = append(s.summaries, CycleSummary{
		Cycle:     cycle,
		Timestamp: s.timestamp(),
		Actions:   actions,
		Summary:   summary,
	})
	if len(s.summaries) > maxCycleSummaries {
		s.summaries = s.summaries[len(s.summaries)-maxCycleSummaries:]
	}
}

// AdvanceCycle increments the monotonic cycle counter and returns the new
// value. Advanced once per cycle regardless of whether the cycle acted.
func (s *Store) AdvanceCycle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleCount++
	return s.cycleCount
}

// CycleCount returns the current cycle counter.
func (s *Store) CycleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycleCount
}

// AlreadyReplied reports whether the target has been replied to before.
func (s *Store) AlreadyReplied(targetID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.postsReplied[targetID]
	return ok
}

// HasPendingConversations reports whether any reply targets exist that may
// still need follow-through.
func (s *Store) HasPendingConversations() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.postsReplied) > 0
}

// CyclesSinceLastPost returns the number of cycles since a cycle whose
// actions included create_post, or neverValue when the agent has never
// posted.
func (s *Store) CyclesSinceLastPost() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.postsCreated) == 0 {
		return neverValue
	}
	lastCycle := 0
	for i := len(s.summaries) - 1; i >= 0; i-- {
		if contains(s.summaries[i].Actions, "create_post") {
			lastCycle = s.summaries[i].Cycle
			break
		}
	}
	return s.cycleCount - lastCycle
}

// CyclesSinceLastReply returns the number of cycles since a cycle whose
// actions included a reply, or neverValue when no reply cycle is on record.
func (s *Store) CyclesSinceLastReply() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.postsReplied) == 0 {
		return neverValue
	}
	for i := len(s.summaries) - 1; i >= 0; i-- {
		actions := s.summaries[i].Actions
		if contains(actions, "reply_to_post") || contains(actions, "reply_to_reply") {
			return s.cycleCount - s.summaries[i].Cycle
		}
	}
	return neverValue
}

// RepliedIDs returns the most recent n replied-to identifiers in the order
// they were first recorded. Used to build the advisory do-not-reply-again
// reminder.
func (s *Store) RepliedIDs(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n <= 0 || len(s.repliedOrder) == 0 {
		return nil
	}
	if n > len(s.repliedOrder) {
		n = len(s.repliedOrder)
	}
	ids := make([]int, n)
	copy(ids, s.repliedOrder[len(s.repliedOrder)-n:])
	return ids
}

// Counts returns a snapshot of journal sizes.
func (s *Store) Counts() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		PostsRead:    len(s.postsRead),
		PostsReplied: len(s.postsReplied),
		PostsCreated: len(s.postsCreated),
		VotesCast:    len(s.votesCast),
		BotsKnown:    len(s.bots),
	}
}

// RelationshipsSummary renders the known bots ordered by interaction
// count, capped to maxChars.
func (s *Store) RelationshipsSummary(maxChars int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relationshipsSummaryLocked(maxChars)
}

func (s *Store) relationshipsSummaryLocked(maxChars int) string {
	if len(s.bots) == 0 {
		return ""
	}

	type namedBot struct {
		name string
		rel  *BotRelationship
	}
	ordered := make([]namedBot, 0, len(s.bots))
	for name, rel := range s.bots {
		ordered = append(ordered, namedBot{name, rel})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].rel.InteractionCount != ordered[j].rel.InteractionCount {
			return ordered[i].rel.InteractionCount > ordered[j].rel.InteractionCount
		}
		return ordered[i].name < ordered[j].name
	})

	lines := []string{"Bots you know:"}
	for _, b := range ordered {
		topics := "general"
		if len(b.rel.TopicsDiscussed) > 0 {
			top := b.rel.TopicsDiscussed
			if len(top) > 3 {
				top = top[:3]
			}
			topics = strings.Join(top, ", ")
		}
		lines = append(lines, fmt.Sprintf("  %s (%d interactions, topics: %s)", b.name, b.rel.InteractionCount, topics))
	}

	return truncateEllipsis(strings.Join(lines, "\n"), maxChars)
}

// ContextString renders the journal as prompt context: recent cycles,
// recent posts, the replied-to dedup list, relationships, and stats.
func (s *Store) ContextString(maxChars int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string

	if len(s.summaries) > 0 {
		recent := s.summaries
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		parts = append(parts, "Recent activity:")
		for _, cs := range recent {
			parts = append(parts, fmt.Sprintf("  Cycle %d: %s", cs.Cycle, cs.Summary))
		}
	}

	if len(s.postsCreated) > 0 {
		recent := s.postsCreated
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		titles := make([]string, len(recent))
		for i, p := range recent {
			titles[i] = fmt.Sprintf("#%d %q", p.ID, p.Title)
		}
		parts = append(parts, "Your recent posts: "+strings.Join(titles, ", "))
	}

	if len(s.repliedOrder) > 0 {
		ids := s.repliedOrder
		if len(ids) > 10 {
			ids = ids[len(ids)-10:]
		}
		parts = append(parts, fmt.Sprintf("Posts you already replied to (DO NOT reply again): %v", ids))
	}

	if rel := s.relationshipsSummaryLocked(400); rel != "" {
		parts = append(parts, rel)
	}

	parts = append(parts, fmt.Sprintf(
		"Session stats: %d posts read, %d replies sent, %d posts created, %d votes cast",
		len(s.postsRead), len(s.postsReplied), len(s.postsCreated), len(s.votesCast),
	))

	return truncateEllipsis(strings.Join(parts, "\n"), maxChars)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func truncateEllipsis(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	if maxChars <= 3 {
		return s[:maxChars]
	}
	return s[:maxChars-3] + "..."
}
