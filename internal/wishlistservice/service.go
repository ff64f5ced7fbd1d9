package wishlistservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogsite/internal/access"
	"github.com/sushihentaime/blogsite/internal/docstore"
	"github.com/sushihentaime/blogsite/internal/identity"
)

// OwnerField names the principal a wishlist entry belongs to. The spelling
// is part of the wire format.
const OwnerField = "wishLIstEmail"

type WishlistService struct {
	store docstore.Store
}

func NewWishlistService(store docstore.Store) *WishlistService {
	return &WishlistService{store: store}
}

// AddEntry stores entry for the caller. Entries cannot be created on
// someone else's behalf.
func (s *WishlistService) AddEntry(ctx context.Context, principal identity.Principal, entry docstore.Document) (*docstore.InsertOneResult, error) {
	owner, _ := entry.String(OwnerField)
	if err := access.Authorize(principal, owner); err != nil {
		return nil, err
	}

	return s.store.InsertOne(ctx, entry)
}

func (s *WishlistService) GetEntries(ctx context.Context, principal identity.Principal, email string) ([]docstore.Document, error) {
	if err := access.Authorize(principal, email); err != nil {
		return nil, err
	}

	return s.store.Find(ctx, docstore.Filter{docstore.Eq(OwnerField, email)})
}

// RemoveEntry deletes the entry only when it belongs to the caller. A missing
// entry and someone else's entry are both reported as access.ErrForbidden.
func (s *WishlistService) RemoveEntry(ctx context.Context, principal identity.Principal, id uuid.UUID) (*docstore.DeleteResult, error) {
	filter := docstore.Filter{
		docstore.ByID(id),
		docstore.Eq(OwnerField, string(principal)),
	}

	res, err := s.store.DeleteOne(ctx, filter)
	if err != nil {
		return nil, err
	}

	if res.DeletedCount == 0 {
		return nil, access.ErrForbidden
	}

	return res, nil
}
