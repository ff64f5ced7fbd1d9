package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/", app.healthCheckHandler)

	// blogs
	router.HandlerFunc(http.MethodPost, "/blogs", app.requireAuth(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/allblogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/allblogs/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodGet, "/recentBlogs", app.recentBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/myBlogs", app.requireAuth(app.myBlogsHandler))
	router.HandlerFunc(http.MethodGet, "/update/:id", app.requireAuth(app.getBlogForUpdateHandler))
	router.HandlerFunc(http.MethodPut, "/blogs/:id", app.requireAuth(app.updateBlogHandler))

	// wishlist
	router.HandlerFunc(http.MethodPost, "/wishList", app.requireAuth(app.createWishlistEntryHandler))
	router.HandlerFunc(http.MethodGet, "/wishList", app.requireAuth(app.listWishlistHandler))
	router.HandlerFunc(http.MethodDelete, "/wishList/:id", app.requireAuth(app.deleteWishlistEntryHandler))

	// comments
	router.HandlerFunc(http.MethodPost, "/comments", app.createCommentHandler)
	router.HandlerFunc(http.MethodGet, "/comments", app.listCommentsHandler)

	return app.recoverPanic(app.enableCORS(app.rateLimit(app.logRequest(router))))
}
