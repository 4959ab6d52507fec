package controller

import (
	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/pkg/apperror"
	"construction-docs-be/internal/pkg/serverutils"
	"construction-docs-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Trigger(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
}

type analysisController struct {
	service service.IAnalysisService
}

func NewAnalysisController(service service.IAnalysisService) IAnalysisController {
	return &analysisController{service: service}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post(":projectId", c.Trigger)
	h.Get(":projectId/job/:jobId", c.Get)
}

func (c *analysisController) Trigger(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req dto.TriggerAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation("invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return apperror.Validation(err.Error())
	}

	res, err := c.service.Trigger(ctx.Context(), accountId, projectId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Analysis job queued", res))
}

func (c *analysisController) Get(ctx *fiber.Ctx) error {
	accountId, err := accountIdFromLocals(ctx)
	if err != nil {
		return err
	}
	projectId, err := parseUUIDParam(ctx, "projectId")
	if err != nil {
		return err
	}
	jobId, err := parseUUIDParam(ctx, "jobId")
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.Context(), accountId, projectId, jobId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get analysis job", res))
}
