package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PlotKeyPrefix     = "plot:%d"
	PlotsListKeyConst = "plots:list:first"
)

const (
	UserTTL      = 5 * time.Minute
	PlotTTL      = 10 * time.Minute
	PlotsListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PlotKey(plotID uint) string {
	return fmt.Sprintf(PlotKeyPrefix, plotID)
}

// PlotsListKey is the cache key for the anonymous first page of the plot listing.
func PlotsListKey() string {
	return PlotsListKeyConst
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePlot(ctx context.Context, plotID uint) {
	Invalidate(ctx, PlotKey(plotID))
}

func InvalidatePlotsList(ctx context.Context) {
	Invalidate(ctx, PlotsListKey())
}
