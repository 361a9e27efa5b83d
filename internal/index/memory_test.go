package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/curator/internal/domain"
	"github.com/MrSnakeDoc/curator/internal/store"
)

var (
	alice   = domain.Scope{UserID: "alice", Persona: "student"}
	aliceRe = domain.Scope{UserID: "alice", Persona: "researcher"}
	bob     = domain.Scope{UserID: "bob", Persona: "student"}
)

func TestNewMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if s == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	got, err := s.FindResources(context.Background(), store.ResourceFilter{Scope: alice}, 10)
	if err != nil {
		t.Fatalf("FindResources() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("NewMemoryStore() should start empty, got %v resources", len(got))
	}
}

func TestFindResourcesScopeAndLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		mustCreate(t, s, &domain.Resource{
			ID: fmt.Sprintf("a%d", i), Scope: alice, Kind: domain.KindURL,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	mustCreate(t, s, &domain.Resource{ID: "other-persona", Scope: aliceRe, Kind: domain.KindURL})
	mustCreate(t, s, &domain.Resource{ID: "other-user", Scope: bob, Kind: domain.KindURL})

	got, err := s.FindResources(ctx, store.ResourceFilter{Scope: alice, Unenriched: true}, 3)
	if err != nil {
		t.Fatalf("FindResources() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("FindResources() returned %v resources, want 3", len(got))
	}
	for i, r := range got {
		if r.Scope != alice {
			t.Errorf("FindResources() leaked scope %+v", r.Scope)
		}
		if want := fmt.Sprintf("a%d", i); r.ID != want {
			t.Errorf("FindResources()[%d] = %v, want %v (oldest first)", i, r.ID, want)
		}
	}
}

func TestFindResourcesUnenrichedFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	mustCreate(t, s, &domain.Resource{ID: "done", Scope: alice, Kind: domain.KindURL, Description: "d", TagIDs: []string{"t"}})
	mustCreate(t, s, &domain.Resource{ID: "no-tags", Scope: alice, Kind: domain.KindURL, Description: "d"})
	mustCreate(t, s, &domain.Resource{ID: "no-desc", Scope: alice, Kind: domain.KindDocument, TagIDs: []string{"t"}})
	mustCreate(t, s, &domain.Resource{ID: "note", Scope: alice, Kind: domain.Kind("note")})

	got, err := s.FindResources(ctx, store.ResourceFilter{
		Scope:      alice,
		Kinds:      []domain.Kind{domain.KindURL, domain.KindDocument},
		Unenriched: true,
	}, 100)
	if err != nil {
		t.Fatalf("FindResources() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FindResources() returned %v resources, want 2", len(got))
	}
	for _, r := range got {
		if r.ID == "done" || r.ID == "note" {
			t.Errorf("FindResources() returned %v, should be filtered", r.ID)
		}
	}
}

func TestUpdateResourceRespectsScope(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	mustCreate(t, s, &domain.Resource{ID: "r1", Scope: alice, Kind: domain.KindURL})

	err := s.UpdateResource(ctx, bob, "r1", domain.ResourcePatch{Title: domain.Ptr("hijack")})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("UpdateResource() cross-scope error = %v, want ErrNotFound", err)
	}

	if err := s.UpdateResource(ctx, alice, "r1", domain.ResourcePatch{Title: domain.Ptr("Mine"), TagIDs: []string{"t1"}}); err != nil {
		t.Fatalf("UpdateResource() error = %v", err)
	}
	r, err := s.FindResource(ctx, alice, "r1")
	if err != nil {
		t.Fatalf("FindResource() error = %v", err)
	}
	if r.Title != "Mine" || len(r.TagIDs) != 1 {
		t.Errorf("UpdateResource() result = %+v", r)
	}
}

func TestCreateTagUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.CreateTag(ctx, &domain.Tag{ID: "t1", Scope: alice, Name: "go"}); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}
	err := s.CreateTag(ctx, &domain.Tag{ID: "t2", Scope: alice, Name: "go"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("CreateTag() duplicate error = %v, want ErrDuplicate", err)
	}
	if err := s.CreateTag(ctx, &domain.Tag{ID: "t3", Scope: bob, Name: "go"}); err != nil {
		t.Errorf("CreateTag() same name other scope error = %v", err)
	}

	tag, err := s.FindTagByName(ctx, alice, "go")
	if err != nil || tag.ID != "t1" {
		t.Errorf("FindTagByName() = %+v, %v; want t1", tag, err)
	}
}

func TestCreateFolderConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateFolder(ctx, &domain.Folder{ID: fmt.Sprintf("f%d", i), Scope: alice, Name: "Research"})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("concurrent CreateFolder() created %v folders, want 1", created)
	}
	if n := s.FolderCount(alice); n != 1 {
		t.Errorf("FolderCount() = %v, want 1", n)
	}
}

func mustCreate(t *testing.T, s *MemoryStore, r *domain.Resource) {
	t.Helper()
	if err := s.CreateResource(context.Background(), r); err != nil {
		t.Fatalf("CreateResource(%s) error = %v", r.ID, err)
	}
}

func TestUpdateResourceKeepsUserFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	// Selected empty, then saved by the user before the pass persisted.
	mustCreate(t, s, &domain.Resource{ID: "r1", Scope: alice, Kind: domain.KindURL, Description: "my notes", TagIDs: []string{"t-user"}})

	patch := domain.ResourcePatch{Title: domain.Ptr("Machine title"), Description: domain.Ptr("machine text"), TagIDs: []string{"t-machine"}}
	if err := s.UpdateResource(ctx, alice, "r1", patch); err != nil {
		t.Fatalf("UpdateResource() error = %v", err)
	}

	r, err := s.FindResource(ctx, alice, "r1")
	if err != nil {
		t.Fatalf("FindResource() error = %v", err)
	}
	if r.Description != "my notes" || len(r.TagIDs) != 1 || r.TagIDs[0] != "t-user" {
		t.Errorf("UpdateResource() overwrote user fields: %+v", r)
	}
	if r.Title != "Machine title" {
		t.Errorf("Title = %q, want %q", r.Title, "Machine title")
	}
}
