/**
 * Per-field confidence heuristics for LLM-extracted invoice fields.
 */

package extract

import (
	"strings"
	"unicode"
)

// ComputeConfidence scores key extracted fields from simple presence and
// validation heuristics. Scores are clamped to [0.0, 1.0].
func ComputeConfidence(fields InvoiceFields, validation InvoiceValidation) InvoiceConfidence {
	baseline := func(present bool) float64 {
		if present {
			return 0.6
		}
		return 0.2
	}

	supplierPresent := fields.SupplierName != nil && *fields.SupplierName != ""
	invoicePresent := fields.InvoiceNumber != nil && *fields.InvoiceNumber != ""
	totalPresent := fields.TotalAmount != nil

	supplierConf := baseline(supplierPresent)
	invoiceConf := baseline(invoicePresent)
	totalConf := baseline(totalPresent)

	if supplierPresent && !isAllDigits(*fields.SupplierName) {
		supplierConf += 0.1
	}

	if invoicePresent && hasLetters(*fields.InvoiceNumber) && hasDigits(*fields.InvoiceNumber) {
		invoiceConf += 0.1
	}

	hasMathIssue := false
	for _, issue := range validation.Issues {
		if strings.Contains(issue, "netAmount + vatAmount does not equal totalAmount") {
			hasMathIssue = true
			break
		}
	}
	if totalPresent && !hasMathIssue {
		totalConf += 0.2
	}
	if hasMathIssue {
		totalConf -= 0.3
	}

	for _, issue := range validation.Issues {
		switch issue {
		case "Invoice number missing":
			invoiceConf -= 0.2
		case "Supplier name missing":
			supplierConf -= 0.2
		}
	}

	return InvoiceConfidence{
		SupplierName:  clamp(supplierConf),
		InvoiceNumber: clamp(invoiceConf),
		TotalAmount:   clamp(totalConf),
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigits(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
