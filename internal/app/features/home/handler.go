package home

import (
	"net/http"

	"github.com/akadox/akadox/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public pages.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// University is a listed institution on the universities page.
type University struct {
	Name   string
	Island string
}

// universities is the institution directory shown publicly.
var universities = []University{
	{Name: "Universidade de Cabo Verde", Island: "Santiago"},
	{Name: "Universidade de Santiago", Island: "Santiago"},
	{Name: "Universidade Jean Piaget de Cabo Verde", Island: "Santiago"},
	{Name: "Universidade do Mindelo", Island: "São Vicente"},
	{Name: "Universidade Técnica do Atlântico", Island: "São Vicente"},
	{Name: "Instituto Superior de Ciências Económicas e Empresariais", Island: "São Vicente"},
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Bem-vindo", "/"),
	}

	templates.Render(w, r, "home", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /browse                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeBrowse(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Explorar documentos", "/"),
	}

	templates.Render(w, r, "browse", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /universities                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUniversities(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
		Universities []University
	}{
		BaseVM:       viewdata.NewBaseVM(r, "Universidades", "/"),
		Universities: universities,
	}

	templates.Render(w, r, "universities", data)
}
