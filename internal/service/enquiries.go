package service

import (
	"context"
	"strings"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/models"
	"github.com/propsnap/propsnap/internal/validation"
)

type EnquiryService struct {
	deps *Deps
}

// NewEnquiryService returns an EnquiryService.
func NewEnquiryService(deps *Deps) *EnquiryService {
	return &EnquiryService{deps: deps}
}

type EnquiryInput struct {
	PropertyID string `json:"propertyId" validate:"required,id"`
	Message    string `json:"message" validate:"required,min=5"`
}

type ReplyInput struct {
	EnquiryID string `json:"enquiryId" validate:"required,id"`
	Message   string `json:"message" validate:"required,min=1"`
}

type EnquiryTotals struct {
	MainEnquiries int `json:"mainEnquiries"`
	Replies       int `json:"replies"`
	Total         int `json:"total"`
}

type EnquiryThread struct {
	PropertyID string           `json:"propertyId"`
	Enquiries  []models.Enquiry `json:"enquiries"`
	Totals     EnquiryTotals    `json:"totals"`
}

// Create raises an enquiry on an existing property.
func (s *EnquiryService) Create(ctx context.Context, userID string, in EnquiryInput) (*models.Enquiry, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	ok, err := s.deps.Store.Properties.Exists(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("property not found")
	}

	e := &models.Enquiry{PropertyID: in.PropertyID, UserID: userID, Message: in.Message, Replies: []models.EnquiryReply{}}
	if err := s.deps.Store.Enquiries.Create(ctx, e); err != nil {
		return nil, err
	}
	s.deps.publish(ctx, events.EnquiryRaised, map[string]any{
		"enquiryId":  e.ID,
		"propertyId": e.PropertyID,
		"userId":     e.UserID,
	})
	return e, nil
}

// Reply answers an enquiry. Only the listing's owner may reply.
func (s *EnquiryService) Reply(ctx context.Context, userID string, in ReplyInput) (*models.EnquiryReply, error) {
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	e, err := s.deps.Store.Enquiries.FindWithProperty(ctx, in.EnquiryID)
	if err != nil {
		return nil, notFound(err, "enquiry not found")
	}
	if e.Property == nil || e.Property.ListedByID != userID {
		return nil, apperr.Forbidden("only the property owner can reply to enquiries")
	}

	reply := &models.EnquiryReply{EnquiryID: e.ID, UserID: userID, Message: in.Message}
	if err := s.deps.Store.Enquiries.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	s.deps.publish(ctx, events.EnquiryReplied, map[string]any{
		"enquiryId":  e.ID,
		"replyId":    reply.ID,
		"propertyId": e.PropertyID,
		"askerId":    e.UserID,
	})
	return reply, nil
}

// List returns the threads on a property with aggregate counts.
func (s *EnquiryService) List(ctx context.Context, propertyID string) (*EnquiryThread, error) {
	if !models.IsUUID(propertyID) {
		return nil, apperr.FieldError("propertyId", "must be a valid id")
	}
	ok, err := s.deps.Store.Properties.Exists(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("property not found")
	}

	enquiries, err := s.deps.Store.Enquiries.ListForProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	replies := 0
	for _, e := range enquiries {
		replies += len(e.Replies)
	}
	return &EnquiryThread{
		PropertyID: propertyID,
		Enquiries:  enquiries,
		Totals: EnquiryTotals{
			MainEnquiries: len(enquiries),
			Replies:       replies,
			Total:         len(enquiries) + replies,
		},
	}, nil
}
