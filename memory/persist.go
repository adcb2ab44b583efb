package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/tailored-agentic-units/agentbook/store"
)

// document is the serialized journal shape. Integer post identifiers are
// serialized as string keys, matching the persisted document contract.
type document struct {
	PostsRead      map[string]string           `json:"posts_read"`
	PostsReplied   map[string]string           `json:"posts_replied"`
	RepliedOrder   []int                       `json:"replied_order,omitempty"`
	PostsCreated   []PostCreated               `json:"posts_created"`
	VotesCast      map[string]int              `json:"votes_cast"`
	BotsInteracted map[string]*BotRelationship `json:"bots_interacted"`
	CycleSummaries []CycleSummary              `json:"cycle_summaries"`
	CycleCount     int                         `json:"cycle_count"`
}

// MarshalJSON serializes the journal with string keys for the post maps.
func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document{
		PostsRead:      make(map[string]string, len(s.postsRead)),
		PostsReplied:   make(map[string]string, len(s.postsReplied)),
		RepliedOrder:   append([]int(nil), s.repliedOrder...),
		PostsCreated:   s.postsCreated,
		VotesCast:      s.votesCast,
		BotsInteracted: s.bots,
		CycleSummaries: s.summaries,
		CycleCount:     s.cycleCount,
	}
	for id, ts := range s.postsRead {
		doc.PostsRead[strconv.Itoa(id)] = ts
	}
	for id, excerpt := range s.postsReplied {
		doc.PostsReplied[strconv.Itoa(id)] = excerpt
	}

	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalJSON restores the journal from its serialized form. String keys
// that fail integer conversion are skipped rather than failing the load.
func (s *Store) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.postsRead = make(map[int]string, len(doc.PostsRead))
	for key, ts := range doc.PostsRead {
		if id, err := strconv.Atoi(key); err == nil {
			s.postsRead[id] = ts
		}
	}

	s.postsReplied = make(map[int]string, len(doc.PostsReplied))
	for key, excerpt := range doc.PostsReplied {
		if id, err := strconv.Atoi(key); err == nil {
			s.postsReplied[id] = excerpt
		}
	}

	// First-reply order survives restarts through the persisted order
	// list. Identifiers it does not cover (documents written before the
	// list existed, or hand-edited state) trail in ascending order.
	s.repliedOrder = s.repliedOrder[:0]
	seen := make(map[int]bool, len(doc.RepliedOrder))
	for _, id := range doc.RepliedOrder {
		if _, ok := s.postsReplied[id]; ok && !seen[id] {
			s.repliedOrder = append(s.repliedOrder, id)
			seen[id] = true
		}
	}
	var rest []int
	for id := range s.postsReplied {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Ints(rest)
	s.repliedOrder = append(s.repliedOrder, rest...)

	s.postsCreated = doc.PostsCreated
	s.votesCast = doc.VotesCast
	if s.votesCast == nil {
		s.votesCast = make(map[string]int)
	}
	s.bots = doc.BotsInteracted
	if s.bots == nil {
		s.bots = make(map[string]*BotRelationship)
	}
	s.summaries = doc.CycleSummaries
	s.cycleCount = doc.CycleCount

	return nil
}

// Load restores the journal from the document store. A missing or corrupt
// document yields an empty journal; first runs start from nothing.
func (s *Store) Load(ctx context.Context, docs store.Store) error {
	data, err := store.LoadOne(ctx, docs, store.KeyMemory)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := s.UnmarshalJSON(data); err != nil {
		// Corrupt state is abandoned, not fatal.
		return nil
	}
	return nil
}

// Flush persists the journal to the document store.
func (s *Store) Flush(ctx context.Context, docs store.Store) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return store.SaveOne(ctx, docs, store.KeyMemory, data)
}
