package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ArchiveDesk/internal/model"
	"ArchiveDesk/internal/repo"
)

// PublicationHandler serves one governance kind (news, events or notices).
type PublicationHandler struct {
	Archive *repo.Archive
	Kind    string
}

func (p *PublicationHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := p.Archive.Publications(r.Context(), p.Kind)
	if err != nil {
		failErr(w, err, "Unknown kind")
		return
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Render(p.Kind))
	}
	ok(w, http.StatusOK, "", out)
}

func (p *PublicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	row, err := p.Archive.PublicationByID(r.Context(), p.Kind, chi.URLParam(r, "id"))
	if err != nil {
		failErr(w, err, "Not found")
		return
	}
	ok(w, http.StatusOK, "", row.Render(p.Kind))
}

func (p *PublicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	p.save(w, r, "")
}

func (p *PublicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	p.save(w, r, chi.URLParam(r, "id"))
}

func (p *PublicationHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	var in model.PublicationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	row, err := p.Archive.SavePublication(r.Context(), p.Kind, id, in)
	if err != nil {
		failErr(w, err, "Not found")
		return
	}
	ok(w, statusFor(id), "Saved", row.Render(p.Kind))
}

func (p *PublicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := p.Archive.DeletePublication(r.Context(), p.Kind, chi.URLParam(r, "id")); err != nil {
		failErr(w, err, "Not found")
		return
	}
	ok(w, http.StatusOK, "Deleted", nil)
}
