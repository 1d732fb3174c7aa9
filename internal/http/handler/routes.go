package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cargoconnect/internal/registry"
	"cargoconnect/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// translate transport concerns only; all business rules live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, reg *registry.Registry, docSvc service.DocumentService, compSvc service.ComplianceService, maxUploadBytes int64) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/jurisdictions", ListJurisdictions(reg))
	app.Get("/jurisdictions/:code", GetJurisdiction(reg))

	app.Post("/shipments/:id/documents", RegisterDocument(docSvc))
	app.Get("/shipments/:id/documents", ListShipmentDocuments(docSvc))
	app.Get("/shipments/:id/compliance", EvaluateCompliance(compSvc))
	app.Get("/shipments/:id/customs-forms", GenerateCustomsForms(compSvc))

	app.Post("/documents/:id/file", UploadDocumentFile(docSvc, maxUploadBytes))
	app.Patch("/documents/:id/status", UpdateDocumentStatus(docSvc))
	app.Patch("/documents/:id/metadata", UpdateDocumentMetadata(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
	app.Get("/documents/:id/download", DownloadDocument(docSvc))
	app.Delete("/documents/:id", DeleteDocument(docSvc))
}

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
