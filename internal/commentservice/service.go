package commentservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sushihentaime/blogsite/internal/common"
	"github.com/sushihentaime/blogsite/internal/docstore"
)

const (
	// BlogRefField holds the identifier of the blog a comment belongs to.
	BlogRefField = "blogsId"

	blogOwnerField = "email"
	blogTitleField = "title"
)

// CommentCreated is published after a comment is stored on a blog that has
// an owner to notify.
type CommentCreated struct {
	CommentID  string            `json:"comment_id"`
	BlogID     string            `json:"blog_id"`
	BlogTitle  string            `json:"blog_title"`
	OwnerEmail string            `json:"owner_email"`
	Comment    docstore.Document `json:"comment"`
}

type CommentService struct {
	comments docstore.Store
	blogs    docstore.Store
	mb       common.MessageProducer
	logger   *slog.Logger
}

func NewCommentService(comments, blogs docstore.Store, mb common.MessageProducer, logger *slog.Logger) *CommentService {
	if mb == nil {
		mb = common.NoopProducer{}
	}

	return &CommentService{
		comments: comments,
		blogs:    blogs,
		mb:       mb,
		logger:   logger,
	}
}

// CreateComment stores a comment as submitted. Comments are public and carry
// no owner; only those referencing a known blog notify its owner.
func (s *CommentService) CreateComment(ctx context.Context, comment docstore.Document) (*docstore.InsertOneResult, error) {
	res, err := s.comments.InsertOne(ctx, comment)
	if err != nil {
		return nil, err
	}

	if err := s.notifyOwner(ctx, res.InsertedID, comment); err != nil {
		s.logger.Error("could not publish comment notification", slog.String("comment_id", res.InsertedID), slog.String("error", err.Error()))
	}

	return res, nil
}

// GetComments lists every comment, or only those of blogID when it is set.
func (s *CommentService) GetComments(ctx context.Context, blogID string) ([]docstore.Document, error) {
	var filter docstore.Filter
	if blogID != "" {
		filter = docstore.Filter{docstore.Eq(BlogRefField, blogID)}
	}

	return s.comments.Find(ctx, filter)
}

// notifyOwner publishes a CommentCreated event. Comments on unknown blogs, or
// on blogs without an owner, are not announced.
func (s *CommentService) notifyOwner(ctx context.Context, commentID string, comment docstore.Document) error {
	ref, _ := comment.String(BlogRefField)

	blogID, err := docstore.ParseID(ref)
	if err != nil {
		return nil
	}

	blog, err := s.blogs.FindOne(ctx, docstore.Filter{docstore.ByID(blogID)})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil
		}
		return err
	}

	owner, _ := blog.String(blogOwnerField)
	if owner == "" {
		return nil
	}

	title, _ := blog.String(blogTitleField)

	msg, err := json.Marshal(CommentCreated{
		CommentID:  commentID,
		BlogID:     blogID.String(),
		BlogTitle:  title,
		OwnerEmail: owner,
		Comment:    comment,
	})
	if err != nil {
		return err
	}

	return s.mb.Publish(ctx, msg, common.CommentCreatedKey, common.BlogExchange)
}
