package api

import (
	"net/http"

	"github.com/propsnap/propsnap/internal/service"
)

func (h *Handler) openConversation(w http.ResponseWriter, r *http.Request) {
	var in service.ConversationInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	conv, err := h.svc.Conversations.Open(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, conv, "")
}

func (h *Handler) listConversations(w http.ResponseWriter, r *http.Request) {
	propertyID, err := queryValue(r, "propertyId")
	if err != nil {
		respondError(w, r, err)
		return
	}
	convs, err := h.svc.Conversations.ListForSeller(r.Context(), principalID(r), propertyID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, convs, "")
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in service.SendMessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	m, err := h.svc.Conversations.Send(r.Context(), principalID(r), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, m, "message sent")
}

func (h *Handler) fetchMessages(w http.ResponseWriter, r *http.Request) {
	id, err := queryValue(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	page, err := h.svc.Conversations.Messages(r.Context(), principalID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, page, "")
}
