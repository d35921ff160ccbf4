package model

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// AuditLog represents one recorded change in the backend.
// Old and new values are kept verbatim since their shape depends on the entity.
type AuditLog struct {
	ID         uint            `json:"id"`
	UserID     uint            `json:"user_id"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   uint            `json:"entity_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty"`
	NewValues  json.RawMessage `json:"new_values,omitempty"`
	IPAddress  string          `json:"ip_address"`
	UserAgent  string          `json:"user_agent"`
	CreatedAt  string          `json:"created_at"`
	User       *UserRef        `json:"user,omitempty"`
}

// AuditLogFilters narrows an audit log listing. Zero values are omitted.
type AuditLogFilters struct {
	Search     string `query:"search" json:"search,omitempty"`
	Action     string `query:"action" json:"action,omitempty"`
	EntityType string `query:"entity_type" json:"entity_type,omitempty"`
	DateFrom   string `query:"date_from" json:"date_from,omitempty"`
	DateTo     string `query:"date_to" json:"date_to,omitempty"`
	PerPage    int    `query:"per_page" json:"per_page,omitempty"`
	Page       int    `query:"page" json:"page,omitempty"`
}

// Values encodes the non-empty filters as query parameters.
func (f AuditLogFilters) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", f.Search)
	set("action", f.Action)
	set("entity_type", f.EntityType)
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// Pagination is the paging block of a list response.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	From        int `json:"from"`
	To          int `json:"to"`
}

// AuditLogPage is one page of audit log entries.
type AuditLogPage struct {
	Logs       []AuditLog `json:"logs"`
	Pagination Pagination `json:"pagination"`
}
