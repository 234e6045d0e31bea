package model

import "time"

type HelpRequestStatus string

const (
	HelpPending  HelpRequestStatus = "pending"
	HelpApproved HelpRequestStatus = "approved"
	HelpRejected HelpRequestStatus = "rejected"
)

type HelpRequest struct {
	ID            string            `json:"id" firestore:"id" bson:"_id"`
	Requester     string            `json:"requester" firestore:"requester" bson:"requester"`
	RequesterName string            `json:"requesterName" firestore:"requesterName" bson:"requesterName"`
	RequesterRole Role              `json:"requesterRole" firestore:"requesterRole" bson:"requesterRole"`
	Subject       string            `json:"subject" firestore:"subject" bson:"subject"`
	Details       string            `json:"details" firestore:"details" bson:"details"`
	Location      string            `json:"location,omitempty" firestore:"location,omitempty" bson:"location,omitempty"`
	PreferredDate *time.Time        `json:"preferredDate,omitempty" firestore:"preferredDate,omitempty" bson:"preferredDate,omitempty"`
	Status        HelpRequestStatus `json:"status" firestore:"status" bson:"status"`
	ResolvedBy    string            `json:"resolvedBy,omitempty" firestore:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt    *time.Time        `json:"resolvedAt,omitempty" firestore:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (h HelpRequest) Clone() HelpRequest {
	if h.PreferredDate != nil {
		d := *h.PreferredDate
		h.PreferredDate = &d
	}
	if h.ResolvedAt != nil {
		at := *h.ResolvedAt
		h.ResolvedAt = &at
	}
	return h
}

// Resolve moves a pending request to approved or rejected.
func (h *HelpRequest) Resolve(approve bool, by string, at time.Time) error {
	if h.Status != HelpPending {
		return ErrRequestResolved
	}
	if approve {
		h.Status = HelpApproved
	} else {
		h.Status = HelpRejected
	}
	h.ResolvedBy = NormalizeEmail(by)
	h.ResolvedAt = &at
	return nil
}
