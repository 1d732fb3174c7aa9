package handler

import (
	"github.com/gofiber/fiber/v2"

	"cargoconnect/internal/model"
	"cargoconnect/internal/registry"
	"cargoconnect/internal/service"
)

// ListJurisdictions returns all registered jurisdiction codes.
func ListJurisdictions(reg *registry.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": reg.Codes()})
	}
}

// GetJurisdiction returns the full profile for one jurisdiction, including
// required document types and customs form templates.
func GetJurisdiction(reg *registry.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profile, err := reg.Profile(c.Params("code"))
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(profile)
	}
}

// EvaluateCompliance recomputes the shipment's compliance view on demand.
// Query params: jurisdiction (required), policy (optional: strict|optimistic).
func EvaluateCompliance(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jurisdiction := c.Query("jurisdiction")
		if jurisdiction == "" {
			return writeError(c, fiber.StatusBadRequest, "JURISDICTION_REQUIRED", "jurisdiction query parameter is required")
		}

		var policy model.CompliancePolicy
		if raw := c.Query("policy"); raw != "" {
			p, err := model.ParseCompliancePolicy(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_POLICY", "unknown compliance policy")
			}
			policy = p
		}

		view, err := svc.Evaluate(c.UserContext(), c.Params("id"), jurisdiction, policy)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(view)
	}
}

// GenerateCustomsForms derives the customs paperwork bundle for a shipment.
// The compliance gate lives here, in the orchestration layer: the generator
// itself does not check it. Pass force=true to bypass the gate.
func GenerateCustomsForms(svc service.ComplianceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shipmentID := c.Params("id")
		jurisdiction := c.Query("jurisdiction")
		if jurisdiction == "" {
			return writeError(c, fiber.StatusBadRequest, "JURISDICTION_REQUIRED", "jurisdiction query parameter is required")
		}

		if !c.QueryBool("force") {
			view, err := svc.Evaluate(c.UserContext(), shipmentID, jurisdiction, svc.DefaultPolicy())
			if err != nil {
				return translateError(c, err)
			}
			if !view.Compliant {
				return writeError(c, fiber.StatusConflict, "NOT_COMPLIANT", "shipment is missing required documents for this jurisdiction")
			}
		}

		forms, err := svc.GenerateForms(c.UserContext(), shipmentID, jurisdiction)
		if err != nil {
			return translateError(c, err)
		}
		return c.JSON(fiber.Map{"data": forms, "total": len(forms)})
	}
}
