// internal/app/features/pages/handler.go
package pages

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the page shells behind the access gate. The content
// behind them (documents, favorites, moderation) lives in the backend.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs a Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type shellData struct {
	viewdata.BaseVM
	Lead string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, title, lead string) {
	templates.Render(w, r, "page_shell", shellData{
		BaseVM: viewdata.NewBaseVM(r, title, "/dashboard"),
		Lead:   lead,
	})
}

// ServeUpload handles GET /upload.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Publicar documento", "Partilhe trabalhos, apontamentos e teses com a comunidade.")
}

// ServeFavorites handles GET /favorites.
func (h *Handler) ServeFavorites(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Favoritos", "Os documentos que guardou aparecem aqui.")
}

// ServeAdmin handles GET /admin.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Administração", "Gestão de utilizadores, universidades e conteúdos.")
}

// ServeUniversityAdmin handles GET /university-admin.
func (h *Handler) ServeUniversityAdmin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "Gestão da universidade", "Professores, cursos e documentos da sua universidade.")
}
