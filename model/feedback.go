package model

import "time"

// FeedbackRole is the perspective a feedback form was answered from.
type FeedbackRole string

const (
	FeedbackVolunteer FeedbackRole = "volunteer"
	FeedbackMember    FeedbackRole = "member"
)

// Feedback is immutable once created.
type Feedback struct {
	ID          string                 `json:"id" firestore:"id" bson:"_id"`
	EventID     string                 `json:"eventId" firestore:"eventId" bson:"eventId"`
	SubmittedBy string                 `json:"submittedBy" firestore:"submittedBy" bson:"submittedBy"`
	Role        FeedbackRole           `json:"role" firestore:"role" bson:"role"`
	Responses   map[string]interface{} `json:"responses" firestore:"responses" bson:"responses"`
	SubmittedAt time.Time              `json:"submittedAt" firestore:"submittedAt" bson:"submittedAt"`
}

// Clone copies the responses map. Response values are scalars.
func (f Feedback) Clone() Feedback {
	if f.Responses != nil {
		responses := make(map[string]interface{}, len(f.Responses))
		for k, v := range f.Responses {
			responses[k] = v
		}
		f.Responses = responses
	}
	return f
}

// ServiceVerification records which participants actually served at an event.
// Immutable once created.
type ServiceVerification struct {
	ID                   string    `json:"id" firestore:"id" bson:"_id"`
	EventID              string    `json:"eventId" firestore:"eventId" bson:"eventId"`
	VerifiedParticipants []string  `json:"verifiedParticipants" firestore:"verifiedParticipants" bson:"verifiedParticipants"`
	VerifiedBy           string    `json:"verifiedBy" firestore:"verifiedBy" bson:"verifiedBy"`
	VerifiedAt           time.Time `json:"verifiedAt" firestore:"verifiedAt" bson:"verifiedAt"`
}

func (v ServiceVerification) Clone() ServiceVerification {
	v.VerifiedParticipants = append([]string(nil), v.VerifiedParticipants...)
	return v
}
