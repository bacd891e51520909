package handler

import (
	"net/http"
	"net/url"

	"bank-portal/internal/router"
)

type ViewHandler struct {
	guard *router.Guard
}

func NewViewHandler(guard *router.Guard) *ViewHandler {
	return &ViewHandler{guard: guard}
}

// Navigate resolves the request path through the navigation guard.
func (h *ViewHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	nav := h.guard.Resolve(r.URL.Path)

	if !nav.Proceed() {
		target := nav.Redirect
		if nav.SessionNotification {
			target += "?" + url.Values{"session_expired": {"true"}}.Encode()
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	status := http.StatusOK
	if nav.Route.Name == router.NotFoundName {
		status = http.StatusNotFound
	}
	writeJSON(w, status, nav.Route)
}
