package pagination

import "strconv"

// Request represents a pagination request from the client.
type Request struct {
	Page  int
	Limit int
}

// Parse reads page/limit query values with sane bounds.
func Parse(pageStr, limitStr string) Request {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return Request{Page: page, Limit: limit}
}

// Offset returns the number of documents to skip.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}
