package selection

import (
	"context"

	"routine-advisor/internal/store"
)

// DirectionKey holds the layout direction preference.
const DirectionKey = "loreal_dir"

type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// LoadDirection returns the stored direction, LTR when unset or unreadable.
func LoadDirection(ctx context.Context, storage store.Storage) Direction {
	v, ok, err := storage.Get(ctx, DirectionKey)
	if err != nil || !ok {
		return LTR
	}
	if Direction(v) == RTL {
		return RTL
	}
	return LTR
}

// ToggleDirection flips current, persists the result and returns it.
func ToggleDirection(ctx context.Context, storage store.Storage, current Direction) (Direction, error) {
	next := RTL
	if current == RTL {
		next = LTR
	}
	return next, storage.Set(ctx, DirectionKey, string(next))
}
