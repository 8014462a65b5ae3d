package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"backendconf/internal/model"
	"backendconf/internal/service"
)

// actorFromRequest reads the acting user's identity and language from the
// gateway-injected headers. Language defaults to Danish (1).
func actorFromRequest(c *fiber.Ctx) model.Actor {
	userID, _ := strconv.ParseInt(c.Get("X-User-ID"), 10, 64)
	languageID, _ := strconv.ParseInt(c.Get("X-Language-ID"), 10, 64)
	if languageID == 0 {
		languageID = 1
	}
	return model.Actor{UserID: userID, LanguageID: languageID}
}

// writeServiceError translates domain errors to standardized responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		return writeError(c, fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrFolderNotFound):
		return writeError(c, fiber.StatusNotFound, "FOLDER_NOT_FOUND", "folder not found")
	case errors.Is(err, service.ErrUploadNotFound):
		return writeError(c, fiber.StatusNotFound, "FILE_NOT_FOUND", "uploaded file not found")
	case errors.Is(err, service.ErrTranslationNotFound):
		return writeError(c, fiber.StatusBadRequest, "TRANSLATION_NOT_FOUND", "document translation not found")
	case errors.Is(err, service.ErrFolderRequired):
		return writeError(c, fiber.StatusBadRequest, "FOLDER_REQUIRED", "folder cannot be empty")
	case errors.Is(err, service.ErrFolderNotDeletable):
		return writeError(c, fiber.StatusConflict, "FOLDER_NOT_DELETABLE", "folder is not deletable")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func paramID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

// parseDocumentForm decodes the desired state from either a JSON body or a
// multipart form whose "document" field carries the JSON and whose
// file_{languageId}_{extension} parts carry upload bytes.
func parseDocumentForm(c *fiber.Ctx) (*service.DocumentModel, error) {
	var m service.DocumentModel

	payload := c.FormValue("document")
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, err
		}
	} else if err := c.BodyParser(&m); err != nil {
		return nil, err
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return &m, nil
	}
	for i := range m.Uploads {
		u := &m.Uploads[i]
		files := form.File[fmt.Sprintf("file_%d_%s", u.LanguageID, u.Extension)]
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		u.Data = data
	}
	return &m, nil
}

// IndexDocuments serves the filtered, sorted, paged document listing.
func IndexDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.DocumentIndexRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FILTER", "invalid filter payload")
			}
		}
		res, err := svc.Index(c.UserContext(), actorFromRequest(c), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SimpleDocuments serves id/name pairs in the caller's language.
func SimpleDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		propertyID := int64(-1)
		if v := c.Query("propertyId"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_PROPERTY_ID", "invalid propertyId")
			}
			propertyID = parsed
		}
		actor := actorFromRequest(c)
		if v := c.Query("languageId"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid languageId")
			}
			actor.LanguageID = parsed
		}

		names, err := svc.Names(c.UserContext(), actor, propertyID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(names)
	}
}

// GetDocument serves one aggregate with active children.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// CreateDocument creates an aggregate from the submitted desired state.
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := parseDocumentForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT", "invalid document payload")
		}
		doc, err := svc.Create(c.UserContext(), actorFromRequest(c), m)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// UpdateDocument reconciles the submitted desired state into the aggregate.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		m, err := parseDocumentForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_DOCUMENT", "invalid document payload")
		}
		m.ID = id
		doc, err := svc.Update(c.UserContext(), actorFromRequest(c), m)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument soft-deletes an aggregate.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), actorFromRequest(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DownloadDocument redirects to a presigned URL for one stored upload.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		languageID, err := strconv.ParseInt(c.Query("languageId", "1"), 10, 64)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid languageId")
		}
		extension := c.Query("extension", "pdf")

		url, err := svc.FileURL(c.UserContext(), id, languageID, extension)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(url, fiber.StatusTemporaryRedirect)
	}
}
