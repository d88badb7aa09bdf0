/**
 * Invoice extraction types.
 *
 * Pointer fields distinguish "not found" from zero values; the JSON encoding
 * renders absent fields as null, which API consumers rely on.
 */

package extract

// InvoiceFields holds structured fields extracted from invoice OCR text.
type InvoiceFields struct {
	SupplierName  *string  `json:"supplierName"`
	SupplierVat   *string  `json:"supplierVat"`
	InvoiceNumber *string  `json:"invoiceNumber"`
	InvoiceDate   *string  `json:"invoiceDate"`
	Currency      *string  `json:"currency"`
	NetAmount     *float64 `json:"netAmount"`
	VatAmount     *float64 `json:"vatAmount"`
	TotalAmount   *float64 `json:"totalAmount"`
}

// InvoiceValidation reports deterministic consistency checks on extracted
// fields.
type InvoiceValidation struct {
	IsConsistent bool     `json:"isConsistent"`
	Issues       []string `json:"issues"`
}

// InvoiceConfidence carries per-field confidence in [0.0, 1.0].
type InvoiceConfidence struct {
	SupplierName  float64 `json:"supplierName"`
	InvoiceNumber float64 `json:"invoiceNumber"`
	TotalAmount   float64 `json:"totalAmount"`
}

// RuleSupplier is the supplier block of a rule-based extraction.
type RuleSupplier struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	EIK     *string `json:"eik"`
	VAT     *string `json:"vat"`
}

// RuleClient is the client block of a rule-based extraction.
type RuleClient struct {
	Name *string `json:"name"`
	EIK  *string `json:"eik"`
	VAT  *string `json:"vat"`
}

// RuleService is the service-line block of a rule-based extraction.
type RuleService struct {
	Description *string  `json:"description"`
	Quantity    *string  `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Total       *float64 `json:"total"`
}

// RuleAmounts is the totals block of a rule-based extraction.
type RuleAmounts struct {
	Subtotal *float64 `json:"subtotal"`
	VAT      *float64 `json:"vat"`
	Total    *float64 `json:"total"`
	Currency *string  `json:"currency"`
}

// RuleExtraction is the full result of rule-based invoice extraction.
// ConfidenceScores maps field paths (e.g. "supplier.name", "amounts.total")
// to a score: 1.0 keyword+pattern, 0.7 pattern only, 0.4 inferred, 0.0 not
// found.
type RuleExtraction struct {
	InvoiceNumber     *string            `json:"invoiceNumber"`
	InvoiceDate       *string            `json:"invoiceDate"`
	Supplier          RuleSupplier       `json:"supplier"`
	Client            RuleClient         `json:"client"`
	Service           RuleService        `json:"service"`
	AccountingAccount *string            `json:"accountingAccount"`
	Amounts           RuleAmounts        `json:"amounts"`
	ConfidenceScores  map[string]float64 `json:"confidenceScores"`
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
