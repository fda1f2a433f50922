package services

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/yeremiapane/table-ordering/domain"
)

// EventPublisher delivers realtime events. Publishing is fire and forget.
type EventPublisher interface {
	Publish(event string, data interface{}, roles ...domain.Role)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}, ...domain.Role) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// staffRoles receive the operational events customers should not see.
var staffRoles = []domain.Role{domain.RoleKitchen, domain.RoleWaiter, domain.RoleAdmin}

// validationErr turns ozzo validation failures into domain validation errors.
func validationErr(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return domain.UnexpectedError(err)
	}
	return domain.ValidationError("%s", strings.TrimSuffix(err.Error(), "."))
}
