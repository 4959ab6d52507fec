package controller

import (
	"fmt"
	"io"

	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/serverutils"
	"construction-docs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Uploads above this size are rejected before touching storage.
const maxUploadBytes = 25 * 1024 * 1024

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/project/v1/:projectId/document")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Upload)
	h.Delete(":id", c.Delete)
	h.Get(":id/download", c.Download)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.Validation("multipart field 'file' is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return apperror.Validation("file exceeds the 25MB upload limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to open upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to read upload", err)
	}

	res, err := c.service.Upload(ctx.Context(), accountId, projectId, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}

	res, err := c.service.GetAll(ctx.Context(), accountId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}
	documentId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Delete(ctx.Context(), accountId, projectId, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete document", res))
}

func (c *documentController) Download(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}
	documentId, err := parseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	filename, data, err := c.service.Download(ctx.Context(), accountId, projectId, documentId)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return ctx.Send(data)
}
