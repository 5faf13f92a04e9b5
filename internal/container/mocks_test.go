package container

import (
	"context"

	"github.com/garyjia/donation-desk/internal/domain/entity"
)

type notifyFunc func(name string)

func (f notifyFunc) NotifyWebhookFailure(ctx context.Context, log *entity.ErrorLog) {
	f(log.Name)
}
