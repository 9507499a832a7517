package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakeauth/internal/domain"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	users, hasMore, err := h.users.List(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = userToAPI(u)
	}
	writeJSON(w, http.StatusOK, UserList{
		Pagination: paginationToAPI(domain.PaginationFor(hasMore, len(out), lastUserID(out))),
		Results:    out,
	})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.users.Create(r.Context(), domain.CreateUserRequest{
		ID:           req.ID,
		Email:        req.Email,
		FriendlyName: req.FriendlyName,
		Password:     req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userToAPI(*u))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserGroups(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	groups, hasMore, err := h.groups.ListForUser(r.Context(), chi.URLParam(r, "userID"), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = groupToAPI(g)
	}
	writeJSON(w, http.StatusOK, GroupList{
		Pagination: paginationToAPI(domain.PaginationFor(hasMore, len(out), lastGroupID(out))),
		Results:    out,
	})
}

func (h *Handler) listUserPolicies(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	effective := r.URL.Query().Get("effective") == "true"
	policies, hasMore, err := h.policies.ListForUser(r.Context(), chi.URLParam(r, "userID"), effective, params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]Policy, len(policies))
	for i, p := range policies {
		out[i] = policyToAPI(p)
	}
	writeJSON(w, http.StatusOK, PolicyList{
		Pagination: paginationToAPI(domain.PaginationFor(hasMore, len(out), lastPolicyID(out))),
		Results:    out,
	})
}

func (h *Handler) attachPolicyToUser(w http.ResponseWriter, r *http.Request) {
	err := h.policies.AttachToUser(r.Context(), chi.URLParam(r, "policyID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) detachPolicyFromUser(w http.ResponseWriter, r *http.Request) {
	err := h.policies.DetachFromUser(r.Context(), chi.URLParam(r, "policyID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserCredentials(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	creds, hasMore, err := h.creds.List(r.Context(), chi.URLParam(r, "userID"), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]Credentials, len(creds))
	for i, c := range creds {
		out[i] = credentialsToAPI(c)
	}
	writeJSON(w, http.StatusOK, CredentialsList{
		Pagination: paginationToAPI(domain.PaginationFor(hasMore, len(out), lastAccessKeyID(out))),
		Results:    out,
	})
}

// createCredentials returns the secret access key exactly once.
func (h *Handler) createCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.creds.Create(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CredentialsWithSecret{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		CreationDate:    creds.CreatedAt.Unix(),
	})
}

func (h *Handler) getCredentials(w http.ResponseWriter, r *http.Request) {
	creds, err := h.creds.Get(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "accessKeyID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialsToAPI(*creds))
}

func (h *Handler) deleteCredentials(w http.ResponseWriter, r *http.Request) {
	err := h.creds.Delete(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "accessKeyID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
