package common

import (
	"context"

	"github.com/google/uuid"
)

type userIdKey struct{}
type guestIdKey struct{}
type storeIdKey struct{}

func AttachUserIDToContext(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, userIdKey{}, id)
}

func UserIDFromContext(c context.Context) (uuid.UUID, bool) {
	id, ok := c.Value(userIdKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func AttachGuestIDToContext(c context.Context, id string) context.Context {
	return context.WithValue(c, guestIdKey{}, id)
}

func GuestIDFromContext(c context.Context) (string, bool) {
	id, ok := c.Value(guestIdKey{}).(string)
	return id, ok && id != ""
}

func AttachStoreIDToContext(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, storeIdKey{}, id)
}

func StoreIDFromContext(c context.Context) (uuid.UUID, bool) {
	id, ok := c.Value(storeIdKey{}).(uuid.UUID)
	return id, ok && id != uuid.Nil
}
