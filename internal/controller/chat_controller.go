package controller

import (
	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/serverutils"
	"construction-docs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":projectId", c.Ask)
	h.Get(":projectId/history", c.History)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return apperror.Validation(err.Error())
	}

	res, err := c.service.Ask(ctx.Context(), accountId, projectId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask question", res))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 0)
	if limit < 0 {
		return apperror.Validation("limit must not be negative")
	}

	res, err := c.service.History(ctx.Context(), accountId, projectId, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}
