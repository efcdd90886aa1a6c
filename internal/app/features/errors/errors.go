// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler is the errors feature handler.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "Não tem permissão para ver esta página.", "")
}

// RenderForbidden shows the access error page with a message.
// If backURL is empty, a safe back URL is resolved with "/" as fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, "Acesso negado", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", pageData{BaseVM: vm, Message: msg})
}

// RenderError shows the generic error page with the given status.
func RenderError(w http.ResponseWriter, r *http.Request, status int, msg, backURL string) {
	vm := viewdata.NewBaseVM(r, "Erro", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", pageData{BaseVM: vm, Message: msg})
}
