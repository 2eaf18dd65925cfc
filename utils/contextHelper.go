package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyCashierName   = appctx.ContextKeyCashierName
	ContextKeyRegisterId    = appctx.ContextKeyRegisterId
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetCashierNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCashierName)
}

func SetCashierNameInContext(ctx context.Context, cashierName string) context.Context {
	return appctx.Set(ctx, ContextKeyCashierName, cashierName)
}

func GetRegisterIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRegisterId)
}

func SetRegisterIdInContext(ctx context.Context, registerId string) context.Context {
	return appctx.Set(ctx, ContextKeyRegisterId, registerId)
}
