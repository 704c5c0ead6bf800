// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/rewind/internal/models"
	"github.com/tomtom215/rewind/internal/stats"
	"github.com/tomtom215/rewind/internal/validation"
)

// maxListLimit caps the limit query parameter.
const maxListLimit = 1000

// syncRequest holds POST /api/v1/sync parameters. Absent values fall back to
// the configured defaults.
type syncRequest struct {
	Wait      bool  `query:"wait"`
	SinceYear int   `query:"since_year" validate:"omitempty,min=1970,max=9999"`
	AccountID int64 `query:"account_id" validate:"gte=0"`
}

// topRequest holds GET /api/v1/stats/top parameters.
type topRequest struct {
	Window   string `query:"window" validate:"omitempty,oneof=week month year allTime all"`
	User     int64  `query:"user" validate:"gte=0"`
	Sort     string `query:"sort" validate:"omitempty,oneof=plays watchTime watch_time"`
	Type     string `query:"type" validate:"omitempty,oneof=movie show"`
	Limit    int    `query:"limit" validate:"gte=0,lte=1000"`
	Sessions bool   `query:"sessions"`
}

// usersRequest holds GET /api/v1/stats/users parameters.
type usersRequest struct {
	Window string `query:"window" validate:"omitempty,oneof=week month year allTime all"`
	Sort   string `query:"sort" validate:"omitempty,oneof=plays watchTime watch_time"`
}

// rewindRequest holds GET /api/v1/stats/rewind/{year} parameters.
type rewindRequest struct {
	Year int   `query:"year" validate:"min=1970,max=9999"`
	User int64 `query:"user" validate:"gte=0"`
}

// mediaHistoryRequest holds GET /api/v1/history/media/{ratingKey} parameters.
type mediaHistoryRequest struct {
	RatingKey   string `query:"ratingKey" validate:"ratingkey"`
	Type        string `query:"type" validate:"required,oneof=movie show episode"`
	Grandparent string `query:"grandparent" validate:"omitempty,ratingkey"`
}

// userHistoryRequest holds GET /api/v1/history/users/{accountID} parameters.
type userHistoryRequest struct {
	AccountID int64 `query:"accountID" validate:"gte=0"`
}

// paramError is a query or path value that could not be parsed.
type paramError struct {
	name  string
	value string
	want  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("%s must be %s, got %q", e.name, e.want, e.value)
}

// queryParser reads typed query and path values, keeping the first parse error.
type queryParser struct {
	r   *http.Request
	err error
}

func newQueryParser(r *http.Request) *queryParser {
	return &queryParser{r: r}
}

func (p *queryParser) str(name string) string {
	return p.r.URL.Query().Get(name)
}

func (p *queryParser) path(name string) string {
	return chi.URLParam(p.r, name)
}

func (p *queryParser) intValue(name, raw string, def int) int {
	if raw == "" || p.err != nil {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.err = &paramError{name: name, value: raw, want: "an integer"}
		return def
	}
	return v
}

func (p *queryParser) int64Value(name, raw string, def int64) int64 {
	if raw == "" || p.err != nil {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.err = &paramError{name: name, value: raw, want: "an integer"}
		return def
	}
	return v
}

func (p *queryParser) boolValue(name string) bool {
	raw := p.str(name)
	if raw == "" || p.err != nil {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.err = &paramError{name: name, value: raw, want: "a boolean"}
		return false
	}
	return v
}

// decode finishes parsing and validates req. It writes the 400 response and
// returns false on any failure.
func (p *queryParser) decode(rw *ResponseWriter, req interface{}) bool {
	if p.err != nil {
		rw.BadRequest(p.err.Error())
		return false
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}

func parseSyncRequest(r *http.Request, defaults models.FetchOptions) (syncRequest, *queryParser) {
	p := newQueryParser(r)
	return syncRequest{
		Wait:      p.boolValue("wait"),
		SinceYear: p.intValue("since_year", p.str("since_year"), defaults.SinceYear),
		AccountID: p.int64Value("account_id", p.str("account_id"), defaults.AccountID),
	}, p
}

func (req syncRequest) options() models.FetchOptions {
	return models.FetchOptions{SinceYear: req.SinceYear, AccountID: req.AccountID}
}

func parseTopRequest(r *http.Request) (topRequest, *queryParser) {
	p := newQueryParser(r)
	return topRequest{
		Window:   p.str("window"),
		User:     p.int64Value("user", p.str("user"), 0),
		Sort:     p.str("sort"),
		Type:     p.str("type"),
		Limit:    p.intValue("limit", p.str("limit"), 0),
		Sessions: p.boolValue("sessions"),
	}, p
}

// query converts a validated request. Parse errors cannot occur here since
// validation already restricted the values.
func (req topRequest) query() stats.TopQuery {
	window, _ := stats.ParseTimeWindow(req.Window)
	sort, _ := stats.ParseSortOption(req.Sort)
	return stats.TopQuery{
		Window:          window,
		AccountID:       req.User,
		MediaType:       req.Type,
		Sort:            sort,
		Limit:           req.Limit,
		IncludeSessions: req.Sessions,
	}
}

func parseUsersRequest(r *http.Request) (usersRequest, *queryParser) {
	p := newQueryParser(r)
	return usersRequest{Window: p.str("window"), Sort: p.str("sort")}, p
}

func parseRewindRequest(r *http.Request) (rewindRequest, *queryParser) {
	p := newQueryParser(r)
	return rewindRequest{
		Year: p.intValue("year", p.path("year"), 0),
		User: p.int64Value("user", p.str("user"), 0),
	}, p
}

func parseMediaHistoryRequest(r *http.Request) (mediaHistoryRequest, *queryParser) {
	p := newQueryParser(r)
	return mediaHistoryRequest{
		RatingKey:   p.path("ratingKey"),
		Type:        p.str("type"),
		Grandparent: p.str("grandparent"),
	}, p
}

func parseUserHistoryRequest(r *http.Request) (userHistoryRequest, *queryParser) {
	p := newQueryParser(r)
	return userHistoryRequest{
		AccountID: p.int64Value("accountID", p.path("accountID"), 0),
	}, p
}
