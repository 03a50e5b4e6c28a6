package domain

import "strings"

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Normalize clamps page/pageSize into usable values.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User status
const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

func (r RequestContext) IsAdmin() bool {
	return strings.EqualFold(r.Role, RoleAdmin)
}
