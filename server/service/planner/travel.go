package planner

import (
	"fmt"
	"time"

	"github.com/notemind/notemind/store"
)

// travelPlaceholderSpan is assumed for the anchor event when it has no
// explicit end, so the return leg has a departure point.
const travelPlaceholderSpan = time.Hour

// Bracket derives a pair of travel events framing a located anchor
// event: an outbound leg ending exactly when the anchor starts, and a
// return leg starting exactly when the anchor ends. Returned events
// carry no UID or ID; the caller assigns identity when persisting.
// Returns nils when travelMinutes is not positive.
func Bracket(anchor *store.Event, travelMinutes int, homeAddress string) (outbound, inbound *store.Event) {
	if travelMinutes <= 0 {
		return nil, nil
	}

	travel := time.Duration(travelMinutes) * time.Minute
	anchorStart := anchor.ParseStartTime()

	outStart := anchorStart.Add(-travel).Unix()
	outEnd := anchorStart.Unix()
	outbound = &store.Event{
		CreatorID: anchor.CreatorID,
		Title:     fmt.Sprintf("Travel to %s (%d min)", anchor.Location, travelMinutes),
		StartTs:   outStart,
		EndTs:     &outEnd,
		Location:  fmt.Sprintf("%s → %s", homeAddress, anchor.Location),
		Kind:      store.EventKindTravelOut,
	}

	anchorEnd := anchor.ParseEndTime()
	if anchorEnd == nil {
		t := anchorStart.Add(travelPlaceholderSpan)
		anchorEnd = &t
	}
	backStart := anchorEnd.Unix()
	backEnd := anchorEnd.Add(travel).Unix()
	inbound = &store.Event{
		CreatorID: anchor.CreatorID,
		Title:     fmt.Sprintf("Travel home (%d min)", travelMinutes),
		StartTs:   backStart,
		EndTs:     &backEnd,
		Location:  fmt.Sprintf("%s → %s", anchor.Location, homeAddress),
		Kind:      store.EventKindTravelBack,
	}

	return outbound, inbound
}
