package apitablev1

import (
	"context"

	"github.com/fulldump/slotlist/service"
)

const ContextServicerKey = "4b1c7e3a-8f2d-11ef-a0f4-5f3e2b7c9d10"

func SetServicer(ctx context.Context, s service.Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) service.Servicer {
	return ctx.Value(ContextServicerKey).(service.Servicer)
}
