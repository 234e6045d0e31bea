package dto

type NotificationQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type MessageRequest struct {
	To      string `json:"to" binding:"required,email"`
	Message string `json:"message" binding:"required,max=2000"`
}
