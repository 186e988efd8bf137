package repository

// Page represents a simple limit/offset window for listing operations.
// A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Top is shorthand for the first n rows.
func Top(n int) Page { return Page{Limit: n} }
