package dto

import "volunteerhub/model"

// ResponseSubmission answers the form embedded in an actionable notification.
type ResponseSubmission struct {
	NotificationID string                 `json:"notificationId" binding:"required"`
	Responses      map[string]interface{} `json:"responses" binding:"required"`
}

type QuestionSummary struct {
	ID       string  `json:"id"`
	Question string  `json:"question"`
	Type     string  `json:"type"`
	Answers  int     `json:"answers"`
	Average  float64 `json:"average,omitempty"`
	Yes      int     `json:"yes,omitempty"`
	No       int     `json:"no,omitempty"`
}

type FeedbackSummary struct {
	EventID     string            `json:"eventId"`
	EventTitle  string            `json:"eventTitle"`
	Total       int               `json:"total"`
	Volunteer   []QuestionSummary `json:"volunteer"`
	Member      []QuestionSummary `json:"member"`
	Submissions []model.Feedback  `json:"submissions"`
}
