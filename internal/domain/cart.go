package domain

import "time"

// OwnerKind discriminates who a cart line belongs to.
type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGuest OwnerKind = "guest"
)

// Owner is the key scoping a cart line to exactly one actor: a verified
// user id or an anonymous guest session token, never both.
type Owner struct {
	Kind      OwnerKind
	UserID    int64
	SessionID string
}

// UserOwner returns an owner key for an authenticated user.
func UserOwner(id int64) Owner {
	return Owner{Kind: OwnerUser, UserID: id}
}

// GuestOwner returns an owner key for an anonymous guest session token.
func GuestOwner(token string) Owner {
	return Owner{Kind: OwnerGuest, SessionID: token}
}

// CartLine is one quantity of a purchasable variant for one owner.
// PriceCents and Title come from the variant by join at query time;
// no price snapshot is stored on the line.
type CartLine struct {
	ID         int64
	VariantID  int64
	Quantity   int
	PriceCents int64
	Title      string
	AddedAt    time.Time
	UpdatedAt  time.Time
}
