/*
dto.go - Request types and error envelope for the API

PURPOSE:
  Defines the JSON structures for inbound API requests. Responses
  serialize the domain entities directly - their JSON tags are the
  persisted collection format, which is also the API contract (the same
  shape the snapshot backup uses).

NAMING CONVENTION:
  - *Request: Request body types from clients
  - ErrorResponse: Uniform error envelope

VALIDATION:
  Structural validation (required fields, ranges) happens in handlers;
  settlement-specific validation lives on pos.ServiceRequest.

SEE ALSO:
  - handlers.go: Uses these types
  - pos/types.go: Response shapes
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/workshop-pos/pos"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateProductRequest is the request to add an inventory product.
type CreateProductRequest struct {
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	MinStockAlert decimal.Decimal `json:"minStockAlert"`
}

// UpdateProductRequest is a partial product update; absent fields are
// left unchanged.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Type          *string          `json:"type,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice,omitempty"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice,omitempty"`
	CurrentStock  *decimal.Decimal `json:"currentStock,omitempty"`
	MinStockAlert *decimal.Decimal `json:"minStockAlert,omitempty"`
}

// Patch converts the request into a domain patch.
func (r UpdateProductRequest) Patch() pos.ProductPatch {
	patch := pos.ProductPatch{
		Name:          r.Name,
		PurchasePrice: r.PurchasePrice,
		SellingPrice:  r.SellingPrice,
		CurrentStock:  r.CurrentStock,
		MinStockAlert: r.MinStockAlert,
	}
	if r.Type != nil {
		t := pos.ProductType(*r.Type)
		patch.Type = &t
	}
	return patch
}

// CreateServiceRequest is the POS settlement request.
type CreateServiceRequest struct {
	CarPlateNumber  string          `json:"carPlateNumber"`
	OilProductID    string          `json:"oilProductId"`
	OilLiters       decimal.Decimal `json:"oilLiters"`
	FilterProductID string          `json:"filterProductId"`
	LaborCost       decimal.Decimal `json:"laborCost"`
}

// UpdateSettingsRequest is a partial settings update.
type UpdateSettingsRequest struct {
	CompanyName    *string          `json:"companyName,omitempty"`
	CompanyAddress *string          `json:"companyAddress,omitempty"`
	CompanyPhone   *string          `json:"companyPhone,omitempty"`
	TaxRate        *decimal.Decimal `json:"taxRate,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ReceiptDTO is the redisplay of a settled service with its reconstructed
// tax breakdown and the company profile for the receipt header.
type ReceiptDTO struct {
	Company   pos.Settings  `json:"company"`
	Service   pos.Service   `json:"service"`
	Breakdown pos.Breakdown `json:"breakdown"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
