package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hosting-storefront/internal/apperror"
	"hosting-storefront/internal/dto"
	"hosting-storefront/internal/model"
	"hosting-storefront/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContactService stores messages from the public contact form for admins.
type ContactService interface {
	Submit(ctx context.Context, req *dto.ContactRequest) (*model.ContactMessage, error)
	List(ctx context.Context) ([]*model.ContactMessage, error)
	MarkRead(ctx context.Context, messageID string) error
}

type contactServiceImpl struct {
	contactRepo repository.ContactRepository
	log         *zap.Logger
}

func NewContactService(contactRepo repository.ContactRepository, log *zap.Logger) ContactService {
	return &contactServiceImpl{
		contactRepo: contactRepo,
		log:         log,
	}
}

func (s *contactServiceImpl) Submit(ctx context.Context, req *dto.ContactRequest) (*model.ContactMessage, error) {
	message := &model.ContactMessage{
		MessageID: newSlugID("msg"),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Message:   req.Message,
	}
	if message.Name == "" || strings.TrimSpace(message.Message) == "" {
		return nil, apperror.BadRequest("name and message are required")
	}

	if err := s.contactRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	s.log.Info("Contact message received", zap.String("message_id", message.MessageID))
	return message, nil
}

func (s *contactServiceImpl) List(ctx context.Context) ([]*model.ContactMessage, error) {
	messages, err := s.contactRepo.ListRecent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return messages, nil
}

func (s *contactServiceImpl) MarkRead(ctx context.Context, messageID string) error {
	if err := s.contactRepo.MarkRead(ctx, messageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("message %s not found", messageID)
		}
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}
