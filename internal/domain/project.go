package domain

// Project is a backend project record listed on the home page
type Project struct {
	ID       int    `json:"id"`
	Code     string `json:"code"`
	Owner    string `json:"owner"`
	Location string `json:"location"`
}
