package controller

import (
	"smart-triage-be/internal/dto"
	"smart-triage-be/internal/pkg/serverutils"
	"smart-triage-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Reload(ctx *fiber.Ctx) error
	Query(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/reload", c.Reload)
	h.Post("/query", c.Query)
}

func (c *knowledgeController) Reload(ctx *fiber.Ctx) error {
	var req dto.ReloadKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Reload(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Knowledge reloaded", res))
}

func (c *knowledgeController) Query(ctx *fiber.Ctx) error {
	var req dto.QueryKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.knowledgeService.Query(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Knowledge query result", res))
}
