package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakeauth/internal/domain"
)

func (h *Handler) listPolicies(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	policies, hasMore, err := h.policies.List(r.Context(), params)
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

func (h *Handler) createPolicy(w http.ResponseWriter, r *http.Request) {
	var req Policy
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.policies.Create(r.Context(), policyFromAPI(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, policyToAPI(*p))
}

func (h *Handler) getPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policies.Get(r.Context(), chi.URLParam(r, "policyID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policyToAPI(*p))
}

// updatePolicy replaces the statements of the policy named in the path. The
// id in the body, when present, must match the path.
func (h *Handler) updatePolicy(w http.ResponseWriter, r *http.Request) {
	var req Policy
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	policyID := chi.URLParam(r, "policyID")
	if req.ID != "" && req.ID != policyID {
		h.writeError(w, r, domain.ErrValidation("policy id in body does not match path"))
		return
	}
	req.ID = policyID
	p, err := h.policies.Update(r.Context(), policyFromAPI(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policyToAPI(*p))
}

func (h *Handler) deletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := h.policies.Delete(r.Context(), chi.URLParam(r, "policyID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
