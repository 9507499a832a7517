package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lakeauth/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "internal error", "error", err, "path", r.URL.Path)
		msg = "internal server error"
	}
	writeJSON(w, status, Error{Message: msg})
}

// decodeBody decodes the JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.ErrValidation("invalid request body: %s", err)
	}
	return nil
}

// listParams extracts prefix/after/amount query parameters.
func listParams(r *http.Request) (domain.ListParams, error) {
	q := r.URL.Query()
	params := domain.ListParams{
		Prefix: q.Get("prefix"),
		After:  q.Get("after"),
	}
	if raw := q.Get("amount"); raw != "" {
		amount, err := strconv.Atoi(raw)
		if err != nil || amount < 0 {
			return params, domain.ErrValidation("invalid amount %q", raw)
		}
		params.Amount = amount
	}
	return params, nil
}

// lastID returns the sort key of the final page entry for the pagination
// envelope.
func lastUserID(users []User) string {
	if len(users) == 0 {
		return ""
	}
	return users[len(users)-1].ID
}

func lastGroupID(groups []Group) string {
	if len(groups) == 0 {
		return ""
	}
	return groups[len(groups)-1].ID
}

func lastPolicyID(policies []Policy) string {
	if len(policies) == 0 {
		return ""
	}
	return policies[len(policies)-1].ID
}

func lastAccessKeyID(creds []Credentials) string {
	if len(creds) == 0 {
		return ""
	}
	return creds[len(creds)-1].AccessKeyID
}
