// Package api exposes the auth service over HTTP. Handlers decode the wire
// types, call into the services, and map domain errors to status codes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lakeauth/internal/middleware"
	"lakeauth/internal/service"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	users    *service.UserService
	groups   *service.GroupService
	policies *service.PolicyService
	creds    *service.CredentialService
	sessions *service.SessionService
	auth     *middleware.Authenticator
	log      *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	users *service.UserService,
	groups *service.GroupService,
	policies *service.PolicyService,
	creds *service.CredentialService,
	sessions *service.SessionService,
	auth *middleware.Authenticator,
	log *slog.Logger,
) *Handler {
	return &Handler{
		users:    users,
		groups:   groups,
		policies: policies,
		creds:    creds,
		sessions: sessions,
		auth:     auth,
		log:      log.With("component", "api"),
	}
}

// Routes builds the API router. Login, capabilities, and the password-reset
// flow are public; everything else requires authentication.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/login", h.login)
	r.Get("/auth/capabilities", h.getAuthCapabilities)
	r.Post("/auth/password/forgot", h.forgotPassword)
	r.Post("/auth/password", h.updatePassword)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Middleware)

		r.Get("/user", h.getCurrentUser)

		r.Route("/auth/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", h.getUser)
				r.Delete("/", h.deleteUser)
				r.Get("/groups", h.listUserGroups)
				r.Get("/policies", h.listUserPolicies)
				r.Put("/policies/{policyID}", h.attachPolicyToUser)
				r.Delete("/policies/{policyID}", h.detachPolicyFromUser)
				r.Get("/credentials", h.listUserCredentials)
				r.Post("/credentials", h.createCredentials)
				r.Get("/credentials/{accessKeyID}", h.getCredentials)
				r.Delete("/credentials/{accessKeyID}", h.deleteCredentials)
			})
		})

		r.Route("/auth/groups", func(r chi.Router) {
			r.Get("/", h.listGroups)
			r.Post("/", h.createGroup)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", h.getGroup)
				r.Delete("/", h.deleteGroup)
				r.Get("/members", h.listGroupMembers)
				r.Put("/members/{userID}", h.addGroupMembership)
				r.Delete("/members/{userID}", h.deleteGroupMembership)
				r.Get("/policies", h.listGroupPolicies)
				r.Put("/policies/{policyID}", h.attachPolicyToGroup)
				r.Delete("/policies/{policyID}", h.detachPolicyFromGroup)
			})
		})

		r.Route("/auth/policies", func(r chi.Router) {
			r.Get("/", h.listPolicies)
			r.Post("/", h.createPolicy)
			r.Route("/{policyID}", func(r chi.Router) {
				r.Get("/", h.getPolicy)
				r.Put("/", h.updatePolicy)
				r.Delete("/", h.deletePolicy)
			})
		})
	})

	return r
}

func (h *Handler) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Current(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(*u))
}
