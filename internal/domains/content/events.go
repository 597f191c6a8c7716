package content

import (
	"context"

	"tovakustatus-backend/internal/model"
)

type EventService struct {
	*Service[model.Event, *model.Event]
}

func NewEventService(svc *Service[model.Event, *model.Event]) *EventService {
	return &EventService{Service: svc}
}

// ListByStatus returns events with the given status in stored order.
func (s *EventService) ListByStatus(ctx context.Context, status string) ([]model.Event, error) {
	st := model.EventStatus(status)
	if !st.Valid() {
		return nil, ErrInvalidStatus
	}
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return model.FilterEvents(events, st), nil
}
