package handlers

import (
	"xcr-courtage/internal/core/services"
	"xcr-courtage/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles product catalog and sale document endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
	gateway         services.NeolianeGateway
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService, gateway services.NeolianeGateway) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		gateway:         gateway,
	}
}

// ListProducts lists the remote product catalog
// @Summary List products
// @Description List the upstream health product catalog
// @Tags Products
// @Produce json
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products [get]
func (h *DocumentHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.gateway.GetProducts(c.Context())
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Products retrieved successfully", fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// ListDocuments lists the sale documents of a product
// @Summary List product sale documents
// @Description List downloadable sale documents for a product line
// @Tags Products
// @Produce json
// @Param id path int true "Product line ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products/{id}/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	gammeID, err := c.ParamsInt("id")
	if err != nil || gammeID <= 0 {
		return response.BadRequest(c, "Invalid product id")
	}

	documents, err := h.documentService.ProductDocuments(c.Context(), gammeID)
	if err != nil {
		return upstreamError(c, err)
	}

	return response.Success(c, "Documents retrieved successfully", fiber.Map{
		"documents": documents,
		"count":     len(documents),
	})
}

// DownloadDocument streams a decoded sale document
// @Summary Download a sale document
// @Description Fetch and decode a sale document, streamed as PDF
// @Tags Products
// @Produce application/pdf
// @Param id path int true "Product line ID"
// @Param doc_id path int true "Document ID"
// @Success 200 {file} binary
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /products/{id}/documents/{doc_id}/download [get]
func (h *DocumentHandler) DownloadDocument(c *fiber.Ctx) error {
	gammeID, err := c.ParamsInt("id")
	if err != nil || gammeID <= 0 {
		return response.BadRequest(c, "Invalid product id")
	}
	documentID, err := c.ParamsInt("doc_id")
	if err != nil || documentID <= 0 {
		return response.BadRequest(c, "Invalid document id")
	}

	file, err := h.documentService.FetchDocument(c.Context(), gammeID, documentID, c.Query("filename"))
	if err != nil {
		return upstreamError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.Filename+`"`)
	return c.Send(file.Data)
}
