package chat

import "time"

// Session captures one child's visit: who is chatting and whether a
// parent has unlocked the line to Santa.
type Session struct {
	ID             string    `json:"id"`
	ParentEmail    string    `json:"parentEmail,omitempty"`
	KidName        string    `json:"kidName"`
	Age            string    `json:"age,omitempty"`
	ConsentGranted bool      `json:"consent"`
	CreatedAt      time.Time `json:"createdAt"`
}
