package models

// User is the identity handed in by the auth layer. Its lifecycle lives
// elsewhere; tickets only keep the ID.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
