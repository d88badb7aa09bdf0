package extract

import (
	"strings"
	"testing"
)

func completeFields() InvoiceFields {
	return InvoiceFields{
		SupplierName:  strPtr("Acme Ltd"),
		InvoiceNumber: strPtr("INV-42"),
		InvoiceDate:   strPtr("2024-03-15"),
		Currency:      strPtr("BGN"),
		NetAmount:     floatPtr(100.0),
		VatAmount:     floatPtr(20.0),
		TotalAmount:   floatPtr(120.0),
	}
}

func TestValidateInvoiceConsistent(t *testing.T) {
	v := ValidateInvoice(completeFields())
	if !v.IsConsistent {
		t.Errorf("expected consistent, issues: %v", v.Issues)
	}
}

func TestValidateInvoiceWithinTolerance(t *testing.T) {
	fields := completeFields()
	fields.TotalAmount = floatPtr(120.01)
	v := ValidateInvoice(fields)
	if !v.IsConsistent {
		t.Errorf("0.01 rounding difference must pass, issues: %v", v.Issues)
	}
}

func TestValidateInvoiceIssues(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*InvoiceFields)
		wantIssue string
	}{
		{
			name:      "amounts do not add up",
			mutate:    func(f *InvoiceFields) { f.TotalAmount = floatPtr(150.0) },
			wantIssue: "netAmount + vatAmount does not equal totalAmount",
		},
		{
			name: "vat rate out of range",
			mutate: func(f *InvoiceFields) {
				f.VatAmount = floatPtr(50.0)
				f.TotalAmount = floatPtr(150.0)
			},
			wantIssue: "Unexpected VAT rate",
		},
		{
			name:      "missing invoice number",
			mutate:    func(f *InvoiceFields) { f.InvoiceNumber = nil },
			wantIssue: "Invoice number missing",
		},
		{
			name:      "unknown currency",
			mutate:    func(f *InvoiceFields) { f.Currency = strPtr("XYZ") },
			wantIssue: "Unknown currency 'XYZ'",
		},
		{
			name:      "missing supplier",
			mutate:    func(f *InvoiceFields) { f.SupplierName = nil },
			wantIssue: "Supplier name missing",
		},
		{
			name:      "missing total",
			mutate:    func(f *InvoiceFields) { f.TotalAmount = nil },
			wantIssue: "Total amount missing",
		},
		{
			name:      "missing date",
			mutate:    func(f *InvoiceFields) { f.InvoiceDate = nil },
			wantIssue: "Invoice date missing",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields := completeFields()
			tc.mutate(&fields)
			v := ValidateInvoice(fields)
			if v.IsConsistent {
				t.Fatal("expected inconsistent")
			}
			found := false
			for _, issue := range v.Issues {
				if strings.Contains(issue, tc.wantIssue) {
					found = true
				}
			}
			if !found {
				t.Errorf("issues %v missing %q", v.Issues, tc.wantIssue)
			}
		})
	}
}

func TestValidateInvoiceLowercaseCurrencyAccepted(t *testing.T) {
	fields := completeFields()
	fields.Currency = strPtr("eur")
	v := ValidateInvoice(fields)
	for _, issue := range v.Issues {
		if strings.Contains(issue, "Unknown currency") {
			t.Errorf("lowercase known currency flagged: %v", v.Issues)
		}
	}
}

func TestComputeConfidence(t *testing.T) {
	fields := completeFields()
	validation := ValidateInvoice(fields)
	conf := ComputeConfidence(fields, validation)

	// Present non-numeric supplier: 0.6 + 0.1.
	if conf.SupplierName != 0.7 {
		t.Errorf("supplierName confidence = %v, want 0.7", conf.SupplierName)
	}
	// Letters + digits invoice number: 0.6 + 0.1.
	if conf.InvoiceNumber != 0.7 {
		t.Errorf("invoiceNumber confidence = %v, want 0.7", conf.InvoiceNumber)
	}
	// Present total with consistent math: 0.6 + 0.2.
	if conf.TotalAmount != 0.8 {
		t.Errorf("totalAmount confidence = %v, want 0.8", conf.TotalAmount)
	}
}

func TestComputeConfidenceMathIssuePenalty(t *testing.T) {
	fields := completeFields()
	fields.TotalAmount = floatPtr(150.0)
	validation := ValidateInvoice(fields)
	conf := ComputeConfidence(fields, validation)
	if conf.TotalAmount >= 0.6 {
		t.Errorf("totalAmount confidence = %v, want penalty applied", conf.TotalAmount)
	}
}

func TestComputeConfidenceMissingFields(t *testing.T) {
	fields := InvoiceFields{}
	validation := ValidateInvoice(fields)
	conf := ComputeConfidence(fields, validation)

	// Absent baseline 0.2 minus missing-field penalty 0.2, clamped at 0.
	if conf.SupplierName != 0.0 || conf.InvoiceNumber != 0.0 {
		t.Errorf("confidence = %+v, want zeroed name/number", conf)
	}
	if conf.TotalAmount != 0.2 {
		t.Errorf("totalAmount confidence = %v, want 0.2", conf.TotalAmount)
	}
}

func TestClamp(t *testing.T) {
	if clamp(-0.5) != 0 || clamp(1.5) != 1 || clamp(0.3) != 0.3 {
		t.Error("clamp out of contract")
	}
}
