package newsletter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
)

const exportSheet = "Subscribers"

type SubscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Service struct {
	repo *localstore.Repository[model.NewsletterSubscriber, *model.NewsletterSubscriber]
	now  func() time.Time
}

func NewService(repo *localstore.Repository[model.NewsletterSubscriber, *model.NewsletterSubscriber]) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Subscribe validates and stores a subscriber. Emails are compared
// case-insensitively; a second subscription with the same address fails.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (model.NewsletterSubscriber, error) {
	sub := model.NewsletterSubscriber{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Name:           strings.TrimSpace(req.Name),
		SubscribedDate: s.now().UTC(),
	}
	if err := sub.Validate(); err != nil {
		return model.NewsletterSubscriber{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	created, added, err := s.repo.AddIfAbsent(ctx, sub, func(existing model.NewsletterSubscriber) bool {
		return strings.EqualFold(existing.Email, sub.Email)
	})
	if err != nil {
		return model.NewsletterSubscriber{}, fmt.Errorf("add subscriber: %w", err)
	}
	if !added {
		return model.NewsletterSubscriber{}, ErrAlreadySubscribed
	}
	log.Info().Str("subscriber_id", created.ID).Msg("newsletter subscription added")
	return created, nil
}

func (s *Service) List(ctx context.Context) ([]model.NewsletterSubscriber, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Export builds an xlsx workbook with one row per subscriber.
func (s *Service) Export(ctx context.Context) (*excelize.File, error) {
	subs, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Name", "Email", "Subscribed At"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, header)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "D1", style)
	}

	for i, sub := range subs {
		row := i + 2
		values := []any{sub.ID, sub.Name, sub.Email, sub.SubscribedDate.Format(time.RFC3339)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}
	_ = f.SetColWidth(exportSheet, "B", "D", 28)

	return f, nil
}
