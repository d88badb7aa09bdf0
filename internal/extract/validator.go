/**
 * Deterministic validation of extracted invoice fields.
 */

package extract

import (
	"fmt"
	"math"
	"strings"
)

// amountTolerance is the allowed rounding difference between net+vat and
// total.
const amountTolerance = 0.02

var knownCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
	"BGN": true,
}

// ValidateInvoice runs consistency checks on extracted fields and returns the
// collected issues. An empty issue list means the invoice is consistent.
func ValidateInvoice(fields InvoiceFields) InvoiceValidation {
	var issues []string

	if fields.NetAmount != nil && fields.VatAmount != nil && fields.TotalAmount != nil {
		diff := (*fields.NetAmount + *fields.VatAmount) - *fields.TotalAmount
		if math.Abs(diff) > amountTolerance {
			issues = append(issues, fmt.Sprintf(
				"netAmount + vatAmount does not equal totalAmount (difference: %.2f)", diff))
		}

		if *fields.NetAmount > 0 {
			vatRate := *fields.VatAmount / *fields.NetAmount
			if vatRate < 0.15 || vatRate > 0.25 {
				issues = append(issues, fmt.Sprintf(
					"Unexpected VAT rate (computed ~%.1f%%)", vatRate*100))
			}
		}
	}

	if fields.InvoiceNumber == nil || *fields.InvoiceNumber == "" {
		issues = append(issues, "Invoice number missing")
	}

	if fields.Currency != nil {
		if !knownCurrencies[strings.ToUpper(*fields.Currency)] {
			issues = append(issues, fmt.Sprintf("Unknown currency '%s'", *fields.Currency))
		}
	}

	if fields.SupplierName == nil || *fields.SupplierName == "" {
		issues = append(issues, "Supplier name missing")
	}
	if fields.TotalAmount == nil {
		issues = append(issues, "Total amount missing")
	}
	if fields.InvoiceDate == nil {
		issues = append(issues, "Invoice date missing")
	}

	return InvoiceValidation{
		IsConsistent: len(issues) == 0,
		Issues:       issues,
	}
}
