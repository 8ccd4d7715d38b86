package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
	Meta any  `json:"meta,omitempty"`
}

type DecisionResponse struct {
	OK          bool   `json:"ok"`
	Application any    `json:"application"`
	Contract    any    `json:"contract,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

type NotificationsResponse struct {
	OK            bool `json:"ok"`
	Notifications any  `json:"notifications"`
	UnreadCount   int  `json:"unread_count"`
}
