package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/search"
	"github.com/propsnap/propsnap/internal/service"
)

// getProperties serves every retrieval mode of GET /property/properties.
func (h *Handler) getProperties(w http.ResponseWriter, r *http.Request) {
	q, err := search.ParsePropertyQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.svc.Query.Properties(r.Context(), q, principalID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if res.Single() {
		respondData(w, http.StatusOK, res.Property, "")
		return
	}
	respondJSON(w, http.StatusOK, &Response{
		Success: true,
		Data:    res.Properties,
		Meta:    map[string]interface{}{"mode": q.Mode.String(), "count": len(res.Properties)},
	})
}

func (h *Handler) getCities(w http.ResponseWriter, r *http.Request) {
	f, err := search.ParseCityFacetQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	res, err := h.svc.Query.Cities(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &Response{
		Success: true,
		Data:    res.Cities,
		Meta: map[string]interface{}{
			"filters":                  res.Filters,
			"totalCitiesFound":         res.TotalCities,
			"sampleMatchingProperties": res.Sample,
		},
	})
}

func (h *Handler) registerProperty(w http.ResponseWriter, r *http.Request) {
	form, err := parseListingForm(w, r, h.cfg.MaxImages, h.cfg.MaxUploadBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer form.Close()

	in, err := form.input()
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.svc.Properties.Register(r.Context(), principalID(r), in, form.uploads)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, p, "property added successfully")
}

func (h *Handler) updateProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	form, err := parseListingForm(w, r, h.cfg.MaxImages, h.cfg.MaxUploadBytes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer form.Close()

	patch, bodyID, err := form.patch()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if bodyID != "" && bodyID != id {
		respondError(w, r, apperr.FieldError("id", "does not match the property in the path"))
		return
	}
	images, err := form.imageUpdate()
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.svc.Properties.Update(r.Context(), principalID(r), id, patch, images)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, p, "property updated successfully")
}

func (h *Handler) deleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Properties.Delete(r.Context(), principalID(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil, "property deleted successfully")
}

func (h *Handler) myProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.Properties.Mine(r.Context(), principalID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, props, "")
}

func (h *Handler) listFavourites(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.Favourites.List(r.Context(), principalID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, props, "")
}

func (h *Handler) addFavourite(w http.ResponseWriter, r *http.Request) {
	var in service.FavouriteInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	added, err := h.svc.Favourites.Add(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	msg := "added to favourites"
	if !added {
		msg = "already exists"
	}
	respondData(w, http.StatusOK, map[string]bool{"added": added}, msg)
}

func (h *Handler) removeFavourite(w http.ResponseWriter, r *http.Request) {
	var in service.FavouriteInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	removed, err := h.svc.Favourites.Remove(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"removed": removed}, "")
}
