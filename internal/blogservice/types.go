package blogservice

import "github.com/sushihentaime/blogsite/internal/docstore"

const (
	// OwnerField names the principal that created the blog.
	OwnerField    = "email"
	TitleField    = "title"
	CategoryField = "select"

	RecentLimit = 6
)

type BlogService struct {
	store docstore.Store
}
