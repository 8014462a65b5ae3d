package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"backendconf/internal/service"
)

// ListFolders serves the paged folder listing ordered by the caller-language
// translation name.
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}
		var folderID *int64
		if v := c.Query("folderId"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER_ID", "invalid folderId")
			}
			folderID = &parsed
		}

		res, err := svc.List(c.UserContext(), actorFromRequest(c), folderID, limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// SimpleFolders serves id/name pairs with a first-translation fallback.
func SimpleFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := actorFromRequest(c)
		if v := c.Query("languageId"); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_LANGUAGE_ID", "invalid languageId")
			}
			actor.LanguageID = parsed
		}

		names, err := svc.Simple(c.UserContext(), actor)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(names)
	}
}

// GetFolder serves one folder aggregate.
func GetFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		folder, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folder)
	}
}

// CreateFolder creates a folder and mirrors it into the external hierarchy.
func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var m service.FolderModel
		if err := c.BodyParser(&m); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER", "invalid folder payload")
		}
		folder, err := svc.Create(c.UserContext(), actorFromRequest(c), &m)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}

// UpdateFolder upserts translations and pushes them to mapped remote folders.
func UpdateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var m service.FolderModel
		if err := c.BodyParser(&m); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FOLDER", "invalid folder payload")
		}
		m.ID = id
		folder, err := svc.Update(c.UserContext(), actorFromRequest(c), &m)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folder)
	}
}

// DeleteFolder soft-deletes a folder when nothing references it.
func DeleteFolder(svc service.FolderService) fiber.Handler {
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
