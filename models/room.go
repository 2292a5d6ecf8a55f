package models

import "time"

const (
	JoinKindRoom = "room"
	JoinKindChat = "chat"
)

// RoomJoinConfig tells the browser how to enter a live session.
type RoomJoinConfig struct {
	AppointmentID  ID          `json:"appointmentId"`
	Kind           string      `json:"kind"`
	Route          string      `json:"route"`
	RoomID         string      `json:"roomId,omitempty"`
	Mode           SessionMode `json:"mode"`
	Role           Role        `json:"role"`
	UserID         string      `json:"userId"`
	UserName       string      `json:"userName,omitempty"`
	CameraOn       bool        `json:"cameraOn"`
	CameraToggle   bool        `json:"cameraToggle"`
	ScreenShare    bool        `json:"screenShare"`
	MicrophoneOn   bool        `json:"microphoneOn"`
	AppID          uint32      `json:"appId,omitempty"`
	Token          string      `json:"token,omitempty"`
	TokenExpiresAt *time.Time  `json:"tokenExpiresAt,omitempty"`
}
