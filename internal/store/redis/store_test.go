package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var (
	scopeA = domain.Scope{UserID: "u1", Persona: "student"}
	scopeB = domain.Scope{UserID: "u1", Persona: "researcher"}
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestResourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	r := &domain.Resource{ID: "r1", Scope: scopeA, Kind: domain.KindURL, URL: "https://ex.com/a"}
	if err := s.CreateResource(ctx, r); err != nil {
		t.Fatalf("CreateResource() error = %v", err)
	}
	if err := s.CreateResource(ctx, r); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("CreateResource() twice error = %v, want ErrDuplicate", err)
	}

	got, err := s.FindResource(ctx, scopeA, "r1")
	if err != nil {
		t.Fatalf("FindResource() error = %v", err)
	}
	if got.URL != r.URL || got.Kind != domain.KindURL {
		t.Errorf("FindResource() = %+v", got)
	}

	if _, err := s.FindResource(ctx, scopeB, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindResource() other persona error = %v, want ErrNotFound", err)
	}
}

func TestFindResourcesFilterAndLimit(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 4; i++ {
		r := &domain.Resource{
			ID: fmt.Sprintf("r%d", i), Scope: scopeA, Kind: domain.KindURL,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := s.CreateResource(ctx, r); err != nil {
			t.Fatalf("CreateResource() error = %v", err)
		}
	}
	enriched := &domain.Resource{ID: "done", Scope: scopeA, Kind: domain.KindURL, Description: "d", TagIDs: []string{"t"}}
	other := &domain.Resource{ID: "other", Scope: scopeB, Kind: domain.KindURL}
	for _, r := range []*domain.Resource{enriched, other} {
		if err := s.CreateResource(ctx, r); err != nil {
			t.Fatalf("CreateResource() error = %v", err)
		}
	}

	got, err := s.FindResources(ctx, store.ResourceFilter{Scope: scopeA, Unenriched: true}, 2)
	if err != nil {
		t.Fatalf("FindResources() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindResources() returned %v, want 2", len(got))
	}
	if got[0].ID != "r0" || got[1].ID != "r1" {
		t.Errorf("FindResources() order = [%s %s], want [r0 r1]", got[0].ID, got[1].ID)
	}
}

func TestUpdateResource(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	r := &domain.Resource{ID: "r1", Scope: scopeA, Kind: domain.KindURL, Title: "Kept"}
	if err := s.CreateResource(ctx, r); err != nil {
		t.Fatalf("CreateResource() error = %v", err)
	}

	patch := domain.ResourcePatch{Description: domain.Ptr("Filled"), TagIDs: []string{"t1", "t2"}}
	if err := s.UpdateResource(ctx, scopeA, "r1", patch); err != nil {
		t.Fatalf("UpdateResource() error = %v", err)
	}

	got, err := s.FindResource(ctx, scopeA, "r1")
	if err != nil {
		t.Fatalf("FindResource() error = %v", err)
	}
	if got.Title != "Kept" || got.Description != "Filled" || len(got.TagIDs) != 2 {
		t.Errorf("UpdateResource() result = %+v", got)
	}

	if err := s.UpdateResource(ctx, scopeB, "r1", patch); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateResource() other persona error = %v, want ErrNotFound", err)
	}
}

func TestTagNameUniqueness(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if err := s.CreateTag(ctx, &domain.Tag{ID: "t1", Scope: scopeA, Name: "golang", Color: "#3B82F6"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	err := s.CreateTag(ctx, &domain.Tag{ID: "t2", Scope: scopeA, Name: "golang"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("CreateTag() duplicate error = %v, want ErrDuplicate", err)
	}
	if mr.HGet(TagsKey(scopeA), "t2") != "" {
		t.Error("losing CreateTag() should not leave its record behind")
	}

	tag, err := s.FindTagByName(ctx, scopeA, "golang")
	if err != nil {
		t.Fatalf("FindTagByName() error = %v", err)
	}
	if tag.ID != "t1" || tag.Color != "#3B82F6" {
		t.Errorf("FindTagByName() = %+v", tag)
	}

	if _, err := s.FindTagByName(ctx, scopeB, "golang"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindTagByName() other persona error = %v, want ErrNotFound", err)
	}
}

func TestFolderLookups(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	f := &domain.Folder{ID: "f1", Scope: scopeA, Name: "Research", Icon: "folder"}
	if err := s.CreateFolder(ctx, f); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if err := s.CreateFolder(ctx, &domain.Folder{ID: "f2", Scope: scopeA, Name: "Research"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("CreateFolder() duplicate error = %v, want ErrDuplicate", err)
	}

	byID, err := s.FindFolder(ctx, scopeA, "f1")
	if err != nil || byID.Name != "Research" {
		t.Errorf("FindFolder() = %+v, %v", byID, err)
	}
	byName, err := s.FindFolderByName(ctx, scopeA, "Research")
	if err != nil || byName.ID != "f1" {
		t.Errorf("FindFolderByName() = %+v, %v", byName, err)
	}
	if _, err := s.FindFolder(ctx, scopeA, "f2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindFolder(f2) error = %v, want ErrNotFound", err)
	}
}

func TestJobRecords(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	now := time.Now()

	running := &domain.JobRecord{ID: "j1", Scope: scopeA, Limit: 10, State: domain.JobRunning, CreatedAt: now}
	if err := s.SaveJob(ctx, running); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}
	if ttl := mr.TTL(JobKey("j1")); ttl != time.Hour {
		t.Errorf("job TTL = %v, want 1h", ttl)
	}

	old := &domain.JobRecord{ID: "j0", State: domain.JobCompleted, FinishedAt: now.Add(-48 * time.Hour)}
	if err := s.SaveJob(ctx, old); err != nil {
		t.Fatalf("SaveJob() error = %v", err)
	}

	got, err := s.FindJob(ctx, "j1")
	if err != nil {
		t.Fatalf("FindJob() error = %v", err)
	}
	if got.State != domain.JobRunning || got.Limit != 10 {
		t.Errorf("FindJob() = %+v", got)
	}

	removed, err := s.PruneJobs(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneJobs() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("PruneJobs() removed %v, want 1", removed)
	}
	if _, err := s.FindJob(ctx, "j0"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindJob(j0) error = %v, want ErrNotFound", err)
	}
}

func TestExtractJobID(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
		wantErr  bool
	}{
		{name: "valid key", key: JobKey("abc"), expected: "abc"},
		{name: "bare prefix", key: KeyPrefixJob, wantErr: true},
		{name: "too short", key: "cur", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJobID(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJobID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ExtractJobID() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestScopesWithColonsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	owner := domain.Scope{UserID: "a:b", Persona: "c"}
	other := domain.Scope{UserID: "a", Persona: "b:c"}

	if ResourceKey(owner, "r1") == ResourceKey(other, "r1") {
		t.Fatalf("ResourceKey() collides for %+v and %+v", owner, other)
	}

	if err := s.CreateTag(ctx, &domain.Tag{ID: "t1", Scope: owner, Name: "golang"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	if err := s.CreateFolder(ctx, &domain.Folder{ID: "f1", Scope: owner, Name: "Research"}); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if err := s.CreateResource(ctx, &domain.Resource{ID: "r1", Scope: owner, Kind: domain.KindURL}); err != nil {
		t.Fatalf("CreateResource() error = %v", err)
	}

	if _, err := s.FindTagByName(ctx, other, "golang"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindTagByName() other scope error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindFolderByName(ctx, other, "Research"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindFolderByName() other scope error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindFolder(ctx, other, "f1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindFolder() other scope error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindResource(ctx, other, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindResource() other scope error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateResource(ctx, other, "r1", domain.ResourcePatch{Title: domain.Ptr("x")}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateResource() other scope error = %v, want ErrNotFound", err)
	}

	tag, err := s.FindTagByName(ctx, owner, "golang")
	if err != nil || tag.ID != "t1" {
		t.Errorf("FindTagByName() owner = %+v, %v", tag, err)
	}
}

func TestFindRejectsRecordFromAnotherScope(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	// A record whose stored scope disagrees with the key it sits under.
	data, err := json.Marshal(domain.Resource{ID: "r1", Scope: scopeB, Kind: domain.KindURL})
	if err != nil {
		t.Fatal(err)
	}
	if err := mr.Set(ResourceKey(scopeA, "r1"), string(data)); err != nil {
		t.Fatal(err)
	}

	if _, err := s.FindResource(ctx, scopeA, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindResource() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateResourceKeepsConcurrentUserEdits(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	if err := s.CreateResource(ctx, &domain.Resource{ID: "r1", Scope: scopeA, Kind: domain.KindURL}); err != nil {
		t.Fatalf("CreateResource() error = %v", err)
	}

	// The pass built its patch from the empty snapshot; the user then saves.
	patch := domain.ResourcePatch{Description: domain.Ptr("machine text"), TagIDs: []string{"t-machine"}, Title: domain.Ptr("Machine title")}
	if err := s.client.Set(ctx, ResourceKey(scopeA, "r1"), mustJSON(t, domain.Resource{
		ID: "r1", Scope: scopeA, Kind: domain.KindURL, Description: "my notes", TagIDs: []string{"t-user"},
	}), 0).Err(); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateResource(ctx, scopeA, "r1", patch); err != nil {
		t.Fatalf("UpdateResource() error = %v", err)
	}

	got, err := s.FindResource(ctx, scopeA, "r1")
	if err != nil {
		t.Fatalf("FindResource() error = %v", err)
	}
	if got.Description != "my notes" {
		t.Errorf("Description = %q, want %q", got.Description, "my notes")
	}
	if len(got.TagIDs) != 1 || got.TagIDs[0] != "t-user" {
		t.Errorf("TagIDs = %v, want [t-user]", got.TagIDs)
	}
	if got.Title != "Machine title" {
		t.Errorf("Title = %q, want the still-empty field filled", got.Title)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
