package blogservice

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sushihentaime/blogsite/internal/access"
	"github.com/sushihentaime/blogsite/internal/common"
	"github.com/sushihentaime/blogsite/internal/docstore"
	"github.com/sushihentaime/blogsite/internal/identity"
)

var ErrRecordNotFound = errors.New("record not found")

func NewBlogService(store docstore.Store) *BlogService {
	return &BlogService{store: store}
}

// CreateBlog stores blog as submitted. The blog's email must be the caller's.
func (s *BlogService) CreateBlog(ctx context.Context, principal identity.Principal, blog docstore.Document) (*docstore.InsertOneResult, error) {
	owner, _ := blog.String(OwnerField)
	if err := access.Authorize(principal, owner); err != nil {
		return nil, err
	}

	return s.store.InsertOne(ctx, blog)
}

// ListBlogs filters by a case-insensitive title search or by category. When
// both are given the category filter replaces the search filter.
func (s *BlogService) ListBlogs(ctx context.Context, search, category string) ([]docstore.Document, error) {
	v := common.NewValidator()
	validateQuery(v, search, "search")
	validateQuery(v, category, "category")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	var filter docstore.Filter

	if search != "" {
		filter = docstore.Filter{docstore.ContainsFold(TitleField, search)}
	}

	if category != "" {
		filter = docstore.Filter{docstore.Contains(CategoryField, category)}
	}

	return s.store.Find(ctx, filter)
}

// RecentBlogs returns the most recently created blogs, newest first.
func (s *BlogService) RecentBlogs(ctx context.Context) ([]docstore.Document, error) {
	return s.store.Find(ctx, nil, docstore.FindOptions{Newest: true, Limit: RecentLimit})
}

func (s *BlogService) GetBlogByID(ctx context.Context, id uuid.UUID) (docstore.Document, error) {
	blog, err := s.store.FindOne(ctx, docstore.Filter{docstore.ByID(id)})
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNoDocuments):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// GetBlogsByOwner lists the blogs of email, which must be the caller.
func (s *BlogService) GetBlogsByOwner(ctx context.Context, principal identity.Principal, email string) ([]docstore.Document, error) {
	if err := access.Authorize(principal, email); err != nil {
		return nil, err
	}

	return s.store.Find(ctx, docstore.Filter{docstore.Eq(OwnerField, email)})
}

// GetBlogForUpdate returns a blog only to the principal that owns it.
func (s *BlogService) GetBlogForUpdate(ctx context.Context, principal identity.Principal, id uuid.UUID) (docstore.Document, error) {
	blog, err := s.GetBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, _ := blog.String(OwnerField)
	if err := access.Authorize(principal, owner); err != nil {
		return nil, err
	}

	return blog, nil
}

// UpdateBlog sets every field present in changes on the stored blog. Both the
// submitted email and the stored owner must be the caller, so a blog can
// neither be edited by someone else nor handed over to someone else.
func (s *BlogService) UpdateBlog(ctx context.Context, principal identity.Principal, id uuid.UUID, changes docstore.Document) (*docstore.UpdateResult, error) {
	submitted, _ := changes.String(OwnerField)
	if err := access.Authorize(principal, submitted); err != nil {
		return nil, err
	}

	if _, err := s.GetBlogForUpdate(ctx, principal, id); err != nil {
		return nil, err
	}

	filter := docstore.Filter{
		docstore.ByID(id),
		docstore.Eq(OwnerField, string(principal)),
	}

	return s.store.UpdateOne(ctx, filter, changes)
}
