package dto

import "time"

type HelpRequestInput struct {
	Subject       string     `json:"subject" binding:"required,max=200"`
	Details       string     `json:"details" binding:"required,max=5000"`
	Location      string     `json:"location" binding:"max=300"`
	PreferredDate *time.Time `json:"preferredDate"`
	CaptchaToken  string     `json:"captchaToken"`
}

type HelpRequestQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
}

type ResolveRequest struct {
	NotificationID string `json:"notificationId" binding:"required"`
}
