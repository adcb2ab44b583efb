package memory_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tailored-agentic-units/agentbook/memory"
	"github.com/tailored-agentic-units/agentbook/store"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestStore_RecordVote_ReVoteOverwrites(t *testing.T) {
	s := memory.NewStore(memory.WithClock(fixedClock()))
	key := memory.VoteKey("post", 42)

	s.RecordVote(key, 1)
	s.RecordVote(key, -1)
	s.RecordVote(key, -1)

	counts := s.Counts()
	if counts.VotesCast != 1 {
		t.Errorf("VotesCast = %d, want 1 (re-votes overwrite, never duplicate)", counts.VotesCast)
	}
}

func TestStore_VoteKey(t *testing.T) {
	if got := memory.VoteKey("post", 7); got != "post:7" {
		t.Errorf("VoteKey(post, 7) = %q, want %q", got, "post:7")
	}
	if got := memory.VoteKey("reply", 31); got != "reply:31" {
		t.Errorf("VoteKey(reply, 31) = %q, want %q", got, "reply:31")
	}
}

func TestStore_AlreadyReplied_Permanent(t *testing.T) {
	s := memory.NewStore()

	if s.AlreadyReplied(5) {
		t.Fatal("AlreadyReplied(5) = true before any reply")
	}
	s.RecordReplied(5, "my reply", nil, nil)
	if !s.AlreadyReplied(5) {
		t.Error("AlreadyReplied(5) = false after reply")
	}

	// A second reply to the same target does not grow the set.
	s.RecordReplied(5, "another reply", nil, nil)
	if got := s.Counts().PostsReplied; got != 1 {
		t.Errorf("PostsReplied = %d, want 1", got)
	}
	if got := len(s.RepliedIDs(10)); got != 1 {
		t.Errorf("RepliedIDs = %d entries, want 1", got)
	}
}

func TestStore_HasPendingConversations(t *testing.T) {
	s := memory.NewStore()
	if s.HasPendingConversations() {
		t.Error("HasPendingConversations() = true on empty journal")
	}
	s.RecordReplied(3, "hello", nil, nil)
	if !s.HasPendingConversations() {
		t.Error("HasPendingConversations() = false after a reply")
	}
}

func TestStore_CyclesSinceLastPost_NeverPosted(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 7; i++ {
		s.AdvanceCycle()
	}
	if got := s.CyclesSinceLastPost(); got != 999 {
		t.Errorf("CyclesSinceLastPost() = %d, want 999 when never posted", got)
	}
}

func TestStore_CyclesSinceLastPost_FromSummaries(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 10; i++ {
		s.AdvanceCycle()
	}
	s.RecordCreated(101, "a post")
	s.AddCycleSummary(9, []string{"list_posts", "create_post"}, "posted something")

	if got := s.CyclesSinceLastPost(); got != 1 {
		t.Errorf("CyclesSinceLastPost() = %d, want 1 (cycle 10, posted at 9)", got)
	}
}

func TestStore_CyclesSinceLastReply(t *testing.T) {
	s := memory.NewStore()
	if got := s.CyclesSinceLastReply(); got != 999 {
		t.Errorf("CyclesSinceLastReply() = %d, want 999 on empty journal", got)
	}

	for i := 0; i < 6; i++ {
		s.AdvanceCycle()
	}
	s.RecordReplied(8, "hi", nil, nil)
	s.AddCycleSummary(4, []string{"read_post", "reply_to_post"}, "replied")

	if got := s.CyclesSinceLastReply(); got != 2 {
		t.Errorf("CyclesSinceLastReply() = %d, want 2", got)
	}
}

func TestStore_AddCycleSummary_Trims(t *testing.T) {
	s := memory.NewStore()
	for i := 1; i <= 60; i++ {
		s.AddCycleSummary(i, []string{"lurk"}, fmt.Sprintf("cycle %d", i))
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var doc struct {
		CycleSummaries []struct {
			Cycle int `json:"cycle"`
		} `json:"cycle_summaries"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(doc.CycleSummaries) != 50 {
		t.Fatalf("kept %d summaries, want 50", len(doc.CycleSummaries))
	}
	if doc.CycleSummaries[0].Cycle != 11 {
		t.Errorf("oldest kept cycle = %d, want 11", doc.CycleSummaries[0].Cycle)
	}
	if doc.CycleSummaries[49].Cycle != 60 {
		t.Errorf("newest kept cycle = %d, want 60", doc.CycleSummaries[49].Cycle)
	}
}

func TestStore_BotNotes_Bounded(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 9; i++ {
		s.RecordReplied(100+i, fmt.Sprintf("reply number %d", i), []string{"curie"}, nil)
	}

	// The relationship survives with a bounded note ring; interaction count
	// keeps the full tally.
	summary := s.RelationshipsSummary(1000)
	if !strings.Contains(summary, "curie (9 interactions") {
		t.Errorf("RelationshipsSummary = %q, want curie with 9 interactions", summary)
	}
}

func TestStore_RepliedIDs_OrderAndCap(t *testing.T) {
	s := memory.NewStore()
	for _, id := range []int{9, 3, 27, 14} {
		s.RecordReplied(id, "r", nil, nil)
	}

	got := s.RepliedIDs(3)
	want := []int{3, 27, 14}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("RepliedIDs(3) = %v, want %v", got, want)
	}
}

func TestStore_RepliedIDs_OrderSurvivesRestart(t *testing.T) {
	s := memory.NewStore()
	for _, id := range []int{9, 3, 27} {
		s.RecordReplied(id, "r", nil, nil)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	restored := memory.NewStore()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := restored.RepliedIDs(10)
	want := []int{9, 3, 27}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("RepliedIDs after restart = %v, want first-reply order %v", got, want)
	}
}

func TestStore_RepliedIDs_LegacyDocumentFallsBackToAscending(t *testing.T) {
	doc := []byte(`{"posts_replied": {"27": "a", "3": "b", "9": "c"}}`)

	s := memory.NewStore()
	if err := json.Unmarshal(doc, s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := s.RepliedIDs(10)
	want := []int{3, 9, 27}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("RepliedIDs = %v, want ascending fallback %v", got, want)
	}
}

func TestStore_ContextString_Sections(t *testing.T) {
	s := memory.NewStore(memory.WithClock(fixedClock()))
	s.RecordRead(1, []string{"ada"}, []string{"compilers"})
	s.RecordCreated(2, "On compilers")
	s.RecordReplied(3, "interesting take", []string{"ada"}, nil)
	s.RecordVote(memory.VoteKey("post", 1), 1)
	s.AddCycleSummary(1, []string{"read_post"}, "browsed around")

	ctx := s.ContextString(2000)
	for _, want := range []string{
		"Recent activity:",
		`#2 "On compilers"`,
		"Posts you already replied to (DO NOT reply again): [3]",
		"Bots you know:",
		"Session stats: 1 posts read, 1 replies sent, 1 posts created, 1 votes cast",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("ContextString missing %q\ngot:\n%s", want, ctx)
		}
	}
}

func TestStore_ContextString_Capped(t *testing.T) {
	s := memory.NewStore()
	for i := 0; i < 200; i++ {
		s.RecordReplied(i, strings.Repeat("x", 100), nil, nil)
	}
	if got := len(s.ContextString(500)); got > 500 {
		t.Errorf("ContextString length = %d, want <= 500", got)
	}
}

func TestStore_PersistRoundTrip(t *testing.T) {
	docs := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	s := memory.NewStore(memory.WithClock(fixedClock()))
	s.RecordRead(11, []string{"grace"}, []string{"naval software"})
	s.RecordReplied(12, "agreed", []string{"grace"}, nil)
	s.RecordCreated(13, "hello world")
	s.RecordVote(memory.VoteKey("reply", 14), -1)
	s.AddCycleSummary(1, []string{"read_post", "reply_to_post"}, "engaged")
	s.AdvanceCycle()

	if err := s.Flush(ctx, docs); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	restored := memory.NewStore()
	if err := restored.Load(ctx, docs); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !restored.AlreadyReplied(12) {
		t.Error("restored journal lost the replied-to guard")
	}
	if restored.CycleCount() != 1 {
		t.Errorf("restored CycleCount = %d, want 1", restored.CycleCount())
	}
	got := restored.Counts()
	if got.PostsRead != 1 || got.PostsReplied != 1 || got.PostsCreated != 1 || got.VotesCast != 1 || got.BotsKnown != 1 {
		t.Errorf("restored Counts = %+v, want all ones", got)
	}
}

func TestStore_Load_MissingDocument(t *testing.T) {
	docs := store.NewFileStore(t.TempDir())

	s := memory.NewStore()
	if err := s.Load(context.Background(), docs); err != nil {
		t.Fatalf("Load() error = %v, want nil for a fresh store", err)
	}
	if s.CycleCount() != 0 {
		t.Errorf("CycleCount = %d, want 0", s.CycleCount())
	}
}

func TestStore_Load_CorruptDocument(t *testing.T) {
	docs := store.NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := store.SaveOne(ctx, docs, store.KeyMemory, []byte("{not json")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}

	s := memory.NewStore()
	if err := s.Load(ctx, docs); err != nil {
		t.Fatalf("Load() error = %v, want nil (corrupt state abandoned)", err)
	}
	if s.Counts().PostsRead != 0 {
		t.Error("corrupt document produced journal entries")
	}
}
