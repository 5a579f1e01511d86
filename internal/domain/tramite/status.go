package tramite

// Status represents the lifecycle state of a trámite
type Status string

const (
	StatusFiled                   Status = "FILED"
	StatusAssigned                Status = "ASSIGNED"
	StatusUnderReview             Status = "UNDER_REVIEW"
	StatusPendingDocuments        Status = "PENDING_DOCUMENTS"
	StatusAwaitingExternalOpinion Status = "AWAITING_EXTERNAL_OPINION"
	StatusFavorableOpinion        Status = "FAVORABLE_OPINION"
	StatusUnfavorableOpinion      Status = "UNFAVORABLE_OPINION"
	StatusApproved                Status = "APPROVED"
	StatusRejected                Status = "REJECTED"
	StatusArchived                Status = "ARCHIVED"
	StatusCancelled               Status = "CANCELLED"
)

// InitialStatus is the state every trámite is filed in
const InitialStatus = StatusFiled

// transitions lists the allowed destinations of every state. A state with
// an empty list is terminal. Every state must have an entry.
var transitions = map[Status][]Status{
	StatusFiled:                   {StatusAssigned, StatusCancelled},
	StatusAssigned:                {StatusUnderReview, StatusCancelled},
	StatusUnderReview:             {StatusPendingDocuments, StatusAwaitingExternalOpinion, StatusApproved, StatusRejected},
	StatusPendingDocuments:        {StatusUnderReview, StatusArchived},
	StatusAwaitingExternalOpinion: {StatusFavorableOpinion, StatusUnfavorableOpinion},
	StatusFavorableOpinion:        {StatusApproved},
	StatusUnfavorableOpinion:      {StatusRejected},
	StatusApproved:                {},
	StatusRejected:                {},
	StatusArchived:                {},
	StatusCancelled:               {},
}

var publicDescriptions = map[Status]string{
	StatusFiled:                   "Your application has been received and is queued for review",
	StatusAssigned:                "Your application has been assigned to a reviewer",
	StatusUnderReview:             "Your application is being reviewed by our technical team",
	StatusPendingDocuments:        "Your application requires additional information or corrections",
	StatusAwaitingExternalOpinion: "Your application is waiting for an opinion from an external body",
	StatusFavorableOpinion:        "A favorable opinion was issued; a final decision is pending",
	StatusUnfavorableOpinion:      "An unfavorable opinion was issued; a final decision is pending",
	StatusApproved:                "Your application has been approved",
	StatusRejected:                "Your application could not be approved",
	StatusArchived:                "Your application has been archived",
	StatusCancelled:               "Your application has been cancelled",
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusFiled,
		StatusAssigned,
		StatusUnderReview,
		StatusPendingDocuments,
		StatusAwaitingExternalOpinion,
		StatusFavorableOpinion,
		StatusUnfavorableOpinion,
		StatusApproved,
		StatusRejected,
		StatusArchived,
		StatusCancelled,
	}
}

// IsValid checks if the status is a member of the lifecycle
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s
func (s Status) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// AllowedTransitions returns a copy of the destinations reachable from s
func (s Status) AllowedTransitions() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransitionTo checks if the table allows moving from s to target
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PublicDescription is the citizen-facing explanation of the status
func (s Status) PublicDescription() string {
	if d, ok := publicDescriptions[s]; ok {
		return d
	}
	return "Application status: " + string(s)
}
