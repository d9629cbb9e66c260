package api

import (
	"net/http"

	"github.com/propsnap/propsnap/internal/service"
)

func (h *Handler) listEnquiries(w http.ResponseWriter, r *http.Request) {
	propertyID, err := queryValue(r, "propertyId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	thread, err := h.svc.Enquiries.List(r.Context(), propertyID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, thread, "")
}

func (h *Handler) createEnquiry(w http.ResponseWriter, r *http.Request) {
	var in service.EnquiryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := h.svc.Enquiries.Create(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, e, "enquiry sent")
}

func (h *Handler) replyEnquiry(w http.ResponseWriter, r *http.Request) {
	var in service.ReplyInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	reply, err := h.svc.Enquiries.Reply(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, reply, "reply sent")
}
