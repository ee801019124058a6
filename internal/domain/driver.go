package domain

// A registered bus driver.
// ID is the external chat user identifier; Name is refreshed on re-registration.
type Driver struct {
	ID   int64
	Name string
}
