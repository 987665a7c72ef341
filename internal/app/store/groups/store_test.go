package groups

import (
	"testing"

	"github.com/machoraatuti/moringaconnect/internal/app/domain/group"
)

func TestAddPrepends(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []group.Group{{ID: "g1"}})

	s.Add(s.Pending(), group.Group{ID: "g2"})

	st := s.Snapshot()
	if st.Groups[0].ID != "g2" || st.Groups[1].ID != "g1" {
		t.Fatalf("order = %v", []string{st.Groups[0].ID, st.Groups[1].ID})
	}
}

func TestPatchReplacesByID(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []group.Group{
		{ID: "g1", Name: "Nairobi Devs", MemberCount: 10},
		{ID: "g2", Name: "Mombasa Devs"},
	})

	s.Patch(s.Pending(), group.Group{ID: "g1", Name: "Nairobi Devs", MemberCount: 11, IsMember: true})

	st := s.Snapshot()
	if st.Groups[0].MemberCount != 11 || !st.Groups[0].IsMember {
		t.Fatalf("g1 = %+v", st.Groups[0])
	}
	if st.Groups[1].Name != "Mombasa Devs" {
		t.Fatal("sibling group mutated")
	}
}

func TestPatchUnknownIDIsNoOp(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []group.Group{{ID: "g1"}})

	if !s.Patch(s.Pending(), group.Group{ID: "ghost"}) {
		t.Fatal("settlement must apply even when the id is unknown")
	}
	st := s.Snapshot()
	if len(st.Groups) != 1 || st.Groups[0].ID != "g1" {
		t.Fatalf("groups = %+v", st.Groups)
	}
}

func TestRejectionKeepsCollectionAndSetsError(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []group.Group{{ID: "g1"}})

	s.Reject(s.Pending(), "Failed to join group")

	st := s.Snapshot()
	if len(st.Groups) != 1 {
		t.Fatal("rejection discarded the collection")
	}
	if st.ErrMess != "Failed to join group" || st.IsLoading {
		t.Fatalf("state = %+v", st)
	}

	s.ClearError()
	if s.Snapshot().ErrMess != "" {
		t.Fatal("ClearError left the message in place")
	}
}

func TestRemoveAbsentIDIsIdempotent(t *testing.T) {
	s := New()
	s.ReplaceAll(s.Pending(), []group.Group{{ID: "g1"}})

	s.Remove(s.Pending(), "g1")
	s.Remove(s.Pending(), "g1")
	if n := len(s.Snapshot().Groups); n != 0 {
		t.Fatalf("len = %d", n)
	}
}
