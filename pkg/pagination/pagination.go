package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	// MaxLimit caps an explicit limit. A missing or zero limit means no limit.
	MaxLimit = 500

	TotalCountHeader = "X-Total-Count"
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads limit and offset query parameters. Invalid or negative
// values are treated as absent.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Unlimited reports whether the caller asked for every row.
func (p Params) Unlimited() bool {
	return p.Limit <= 0
}

// LimitArg is the value to bind to a "LIMIT $n" placeholder. Postgres
// treats LIMIT NULL as no limit.
func (p Params) LimitArg() interface{} {
	if p.Unlimited() {
		return nil
	}
	return p.Limit
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return !p.Unlimited() && p.Offset+p.Limit < total
}

// SetTotal writes the unpaginated row count to the X-Total-Count header.
func SetTotal(c echo.Context, total int) {
	c.Response().Header().Set(TotalCountHeader, strconv.Itoa(total))
}
