package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakeauth/internal/domain"
)

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	groups, hasMore, err := h.groups.List(r.Context(), params)
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

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.groups.Create(r.Context(), domain.CreateGroupRequest{ID: req.ID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupToAPI(*g))
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.groups.Get(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groupToAPI(*g))
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.Delete(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGroupMembers(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	members, hasMore, err := h.groups.ListMembers(r.Context(), chi.URLParam(r, "groupID"), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]User, len(members))
	for i, u := range members {
		out[i] = userToAPI(u)
	}
	writeJSON(w, http.StatusOK, UserList{
		Pagination: paginationToAPI(domain.PaginationFor(hasMore, len(out), lastUserID(out))),
		Results:    out,
	})
}

func (h *Handler) addGroupMembership(w http.ResponseWriter, r *http.Request) {
	err := h.groups.AddMember(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) deleteGroupMembership(w http.ResponseWriter, r *http.Request) {
	err := h.groups.RemoveMember(r.Context(), chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGroupPolicies(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	policies, hasMore, err := h.policies.ListForGroup(r.Context(), chi.URLParam(r, "groupID"), params)
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

func (h *Handler) attachPolicyToGroup(w http.ResponseWriter, r *http.Request) {
	err := h.policies.AttachToGroup(r.Context(), chi.URLParam(r, "policyID"), chi.URLParam(r, "groupID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) detachPolicyFromGroup(w http.ResponseWriter, r *http.Request) {
	err := h.policies.DetachFromGroup(r.Context(), chi.URLParam(r, "policyID"), chi.URLParam(r, "groupID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
