package domain

import (
	"errors"
	"testing"
	"time"
)

func leg(id, from, to int64, start time.Time) Segment {
	return Segment{
		ID:        id,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Offer:     &TransportOffer{ID: id, DepartureCityID: from, DestinationCityID: to},
	}
}

func TestSortSegments(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	segs := []Segment{leg(3, 2, 3, base.Add(2*time.Hour)), leg(2, 1, 2, base), leg(1, 1, 2, base)}
	SortSegments(segs)
	if segs[0].ID != 1 || segs[1].ID != 2 || segs[2].ID != 3 {
		t.Errorf("unexpected order: %d %d %d", segs[0].ID, segs[1].ID, segs[2].ID)
	}
}

func TestSortSegments_SharedStartFollowsChain(t *testing.T) {
	base := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	// 1 Saint Petersburg, 2 Moscow, 3 Kaliningrad, 4 Tver: SPB->KGD spliced
	// via MSK, then SPB->MSK spliced via Tver, all legs inheriting one window.
	segs := []Segment{leg(3, 2, 3, base), leg(4, 1, 4, base), leg(5, 4, 2, base)}
	SortSegments(segs)

	if err := CheckChain(segs); err != nil {
		t.Fatalf("chain broken after two inserts: %v", err)
	}
	if segs[0].Offer.DepartureCityID != 1 || segs[2].Offer.DestinationCityID != 3 {
		t.Errorf("unexpected order: %d %d %d", segs[0].ID, segs[1].ID, segs[2].ID)
	}
}

func TestSortSegments_TiesContinueFromPreviousLeg(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	later := base.Add(5 * time.Hour)
	// a return leg that starts at the same time must not jump ahead
	segs := []Segment{leg(9, 2, 1, later), leg(7, 1, 2, base), leg(8, 2, 3, later), leg(10, 3, 2, later)}
	SortSegments(segs)

	if segs[0].ID != 7 || segs[1].ID != 8 || segs[2].ID != 10 || segs[3].ID != 9 {
		t.Errorf("unexpected order: %d %d %d %d", segs[0].ID, segs[1].ID, segs[2].ID, segs[3].ID)
	}
}

func TestFindLeg_FirstMatchWins(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	segs := []Segment{leg(1, 1, 2, base), leg(2, 2, 1, base.Add(time.Hour)), leg(3, 1, 2, base.Add(2*time.Hour))}

	idx, ok := FindLeg(segs, 1, 2)
	if !ok || idx != 0 {
		t.Errorf("expected index 0, got %d (%v)", idx, ok)
	}
	if _, ok := FindLeg(segs, 1, 3); ok {
		t.Error("expected no leg 1->3")
	}
}

func TestCheckChain(t *testing.T) {
	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	good := []Segment{leg(1, 1, 2, base), leg(2, 2, 3, base.Add(time.Hour))}
	if err := CheckChain(good); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := []Segment{leg(1, 1, 2, base), leg(2, 4, 3, base.Add(time.Hour))}
	if err := CheckChain(bad); !errors.Is(err, ErrBrokenChain) {
		t.Errorf("expected ErrBrokenChain, got %v", err)
	}
	if err := CheckNeighbours(bad, 0); !errors.Is(err, ErrBrokenChain) {
		t.Errorf("expected ErrBrokenChain looking forward, got %v", err)
	}
}

func TestSplitWindow(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	a, b := SplitWindow(WindowInherit, start, end, 1, 9)
	if !a[0].Equal(start) || !a[1].Equal(end) || !b[0].Equal(start) || !b[1].Equal(end) {
		t.Errorf("inherit must copy the window, got %v %v", a, b)
	}

	a, b = SplitWindow(WindowDistance, start, end, 1, 9)
	mid := start.Add(time.Hour)
	if !a[1].Equal(mid) || !b[0].Equal(mid) {
		t.Errorf("expected split at %v, got %v %v", mid, a, b)
	}

	// degenerate window falls back to inherit
	a, _ = SplitWindow(WindowDistance, end, start, 1, 1)
	if !a[0].Equal(end) || !a[1].Equal(start) {
		t.Errorf("expected unchanged inverted window, got %v", a)
	}
}

func TestParseWindowPolicy(t *testing.T) {
	if p, err := ParseWindowPolicy(""); err != nil || p != WindowInherit {
		t.Errorf("expected inherit default, got %q %v", p, err)
	}
	if _, err := ParseWindowPolicy("thirds"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
