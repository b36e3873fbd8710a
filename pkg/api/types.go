package api

import "time"

// User is a user record as held by the user store.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// DataResponse is the success envelope.
type DataResponse struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
	Data    any  `json:"data"`
}

// NewDataResponse wraps a single payload in the success envelope.
func NewDataResponse(data any) DataResponse {
	return DataResponse{Success: true, Data: data}
}

// NewListResponse wraps a list of users in the success envelope and
// reports how many entries it holds.
func NewListResponse(users []*User) DataResponse {
	if users == nil {
		users = []*User{}
	}
	n := len(users)
	return DataResponse{Success: true, Count: &n, Data: users}
}

// Status is the payload of the status route: how long the process has been
// up and when it started.
type Status struct {
	Uptime  string `json:"uptime"`
	Started string `json:"started"`
}
