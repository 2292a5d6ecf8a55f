package models

type Notification struct {
	ID       ID      `json:"id"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Read     bool    `json:"read"`
	Time     string  `json:"time"`
	Type     string  `json:"type"`
	Location *string `json:"location,omitempty"`
}

// NotificationFeed is a notification list with its unread count.
type NotificationFeed struct {
	Items  []Notification `json:"items"`
	Unread int            `json:"unread"`
}
