package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/blogsite/internal/access"
	"github.com/sushihentaime/blogsite/internal/commentservice"
)

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.parseDocument(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.blogService.CreateBlog(r.Context(), app.contextGetPrincipal(r), blog)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	blogs, err := app.blogService.ListBlogs(r.Context(), qs.Get("search"), qs.Get("category"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) recentBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.RecentBlogs(r.Context())
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) myBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.GetBlogsByOwner(r.Context(), app.contextGetPrincipal(r), r.URL.Query().Get("email"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getBlogForUpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogForUpdate(r.Context(), app.contextGetPrincipal(r), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	// id is a URL parameter
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	changes, err := app.parseDocument(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.blogService.UpdateBlog(r.Context(), app.contextGetPrincipal(r), id, changes)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createWishlistEntryHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := app.parseDocument(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.wishlistService.AddEntry(r.Context(), app.contextGetPrincipal(r), entry)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listWishlistHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := app.wishlistService.GetEntries(r.Context(), app.contextGetPrincipal(r), r.URL.Query().Get("email"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"wishlist": entries}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteWishlistEntryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	result, err := app.wishlistService.RemoveEntry(r.Context(), app.contextGetPrincipal(r), id)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrForbidden):
			app.forbiddenErrorResponse(w, r, msgWishlistDeleteOwner)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	comment, err := app.parseDocument(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	result, err := app.commentService.CreateComment(r.Context(), comment)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"result": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	comments, err := app.commentService.GetComments(r.Context(), r.URL.Query().Get(commentservice.BlogRefField))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
