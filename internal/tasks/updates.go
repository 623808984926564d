package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Err     error  // Set when the step failed
}

// Operation phase enumeration
type Phase int

const (
	FetchListing Phase = iota
	FetchFollowed
	SyncVenue
)

func (p Phase) String() string {
	switch p {
	case FetchListing:
		return "fetch_listing"
	case FetchFollowed:
		return "fetch_followed"
	case SyncVenue:
		return "sync_venue"
	default:
		return ""
	}
}

func fetchListingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchListing,
		Step:    1,
		Total:   1,
		Message: "Fetching venue listing...",
	}
}

func fetchFollowedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFollowed,
		Step:    1,
		Total:   1,
		Message: "Fetching followed venues...",
	}
}

func venueSyncedUpdate(step, total int, venueID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncVenue,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Synced venue %s", venueID),
	}
}

func venueFailedUpdate(step, total int, venueID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncVenue,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to sync venue %s", venueID),
		Err:     err,
	}
}
