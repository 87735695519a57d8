package domain

import (
	"fmt"
	"sort"
	"time"
)

// WindowPolicy decides how a spliced segment's time window is shared between
// the two replacement segments.
type WindowPolicy string

const (
	// WindowInherit gives both replacements the full original window.
	WindowInherit WindowPolicy = "inherit"
	// WindowDistance splits the window in proportion to each leg's distance.
	WindowDistance WindowPolicy = "distance"
)

// ParseWindowPolicy validates a configured policy; empty means WindowInherit.
func ParseWindowPolicy(s string) (WindowPolicy, error) {
	switch WindowPolicy(s) {
	case "", WindowInherit:
		return WindowInherit, nil
	case WindowDistance:
		return WindowDistance, nil
	}
	return "", Invalidf("unknown window policy %q", s)
}

// SortSegments orders segments by start time. Segments sharing a start time,
// as the legs of a spliced segment do under WindowInherit, are ordered by
// chain adjacency, falling back to id. Adjacency needs hydrated offers.
func SortSegments(segs []Segment) {
	sort.SliceStable(segs, func(i, j int) bool {
		if segs[i].StartTime.Equal(segs[j].StartTime) {
			return segs[i].ID < segs[j].ID
		}
		return segs[i].StartTime.Before(segs[j].StartTime)
	})

	for i := 0; i < len(segs); {
		j := i + 1
		for j < len(segs) && segs[j].StartTime.Equal(segs[i].StartTime) {
			j++
		}
		if j-i > 1 {
			var prev *TransportOffer
			if i > 0 {
				prev = segs[i-1].Offer
			}
			chainTies(segs[i:j], prev)
		}
		i = j
	}
}

// chainTies reorders run, already in id order, so that each leg departs
// from where the one before it arrives. prev is the leg preceding the run.
func chainTies(run []Segment, prev *TransportOffer) {
	for _, s := range run {
		if s.Offer == nil {
			return
		}
	}

	rest := append([]Segment(nil), run...)
	take := func(k int) Segment {
		s := rest[k]
		rest = append(rest[:k], rest[k+1:]...)
		return s
	}
	departingFrom := func(city int64) int {
		for k := range rest {
			if rest[k].Offer.DepartureCityID == city {
				return k
			}
		}
		return -1
	}
	head := func() int {
		if prev != nil {
			if k := departingFrom(prev.DestinationCityID); k >= 0 {
				return k
			}
		}
		arrivals := make(map[int64]bool, len(rest))
		for _, s := range rest {
			arrivals[s.Offer.DestinationCityID] = true
		}
		for k := range rest {
			if !arrivals[rest[k].Offer.DepartureCityID] {
				return k
			}
		}
		return 0
	}

	out := make([]Segment, 0, len(run))
	cur := take(head())
	out = append(out, cur)
	for len(rest) > 0 {
		k := departingFrom(cur.Offer.DestinationCityID)
		if k < 0 {
			prev = nil
			k = head()
		}
		cur = take(k)
		out = append(out, cur)
	}
	copy(run, out)
}

// FindLeg returns the index of the first segment, in itinerary order, whose
// offer goes exactly from one city to the other. Segments must be hydrated.
func FindLeg(segs []Segment, from, to int64) (int, bool) {
	for i := range segs {
		if segs[i].Offer != nil && segs[i].Offer.Connects(from, to) {
			return i, true
		}
	}
	return -1, false
}

// CheckNeighbours verifies that the legs around segs[idx] connect to it.
func CheckNeighbours(segs []Segment, idx int) error {
	cur := segs[idx].Offer
	if idx > 0 {
		prev := segs[idx-1].Offer
		if prev != nil && prev.DestinationCityID != cur.DepartureCityID {
			return fmt.Errorf("%w: segment %d arrives at city %d, segment %d departs from city %d",
				ErrBrokenChain, segs[idx-1].ID, prev.DestinationCityID, segs[idx].ID, cur.DepartureCityID)
		}
	}
	if idx < len(segs)-1 {
		next := segs[idx+1].Offer
		if next != nil && next.DepartureCityID != cur.DestinationCityID {
			return fmt.Errorf("%w: segment %d arrives at city %d, segment %d departs from city %d",
				ErrBrokenChain, segs[idx].ID, cur.DestinationCityID, segs[idx+1].ID, next.DepartureCityID)
		}
	}
	return nil
}

// CheckChain verifies every adjacent pair of an ordered, hydrated itinerary.
func CheckChain(segs []Segment) error {
	for i := 1; i < len(segs); i++ {
		if err := CheckNeighbours(segs, i); err != nil {
			return err
		}
	}
	return nil
}

// SplitWindow returns the windows for the two legs replacing a segment that
// ran from start to end. firstDist and secondDist are the legs' distances.
func SplitWindow(policy WindowPolicy, start, end time.Time, firstDist, secondDist int64) (first, second [2]time.Time) {
	if policy != WindowDistance || firstDist+secondDist <= 0 || !start.Before(end) {
		return [2]time.Time{start, end}, [2]time.Time{start, end}
	}
	span := end.Sub(start)
	mid := start.Add(time.Duration(float64(span) * float64(firstDist) / float64(firstDist+secondDist))).Truncate(time.Second)
	if !mid.After(start) || !mid.Before(end) {
		return [2]time.Time{start, end}, [2]time.Time{start, end}
	}
	return [2]time.Time{start, mid}, [2]time.Time{mid, end}
}
