package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"backendconf/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Fixed
// segments (simple, folders) are registered before the :id wildcard so they
// are matched first.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, folderSvc service.FolderService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	docs := app.Group("/documents")

	docs.Post("/index", IndexDocuments(docSvc))
	docs.Get("/simple", SimpleDocuments(docSvc))

	folders := docs.Group("/folders")
	folders.Get("/simple", SimpleFolders(folderSvc))
	folders.Get("/", ListFolders(folderSvc))
	folders.Post("/", CreateFolder(folderSvc))
	folders.Get("/:id", GetFolder(folderSvc))
	folders.Put("/:id", UpdateFolder(folderSvc))
	folders.Delete("/:id", DeleteFolder(folderSvc))

	docs.Post("/", CreateDocument(docSvc))
	docs.Get("/:id/file", DownloadDocument(docSvc))
	docs.Get("/:id", GetDocument(docSvc))
	docs.Put("/:id", UpdateDocument(docSvc))
	docs.Delete("/:id", DeleteDocument(docSvc))
}
