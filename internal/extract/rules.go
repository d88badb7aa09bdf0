/**
 * Rule-based invoice extraction for Bulgarian invoices.
 *
 * No LLM or external calls; pattern matching and keyword proximity only. Text
 * is lowercased and whitespace-collapsed before matching, so patterns assume
 * single-space separation and lowercase Cyrillic.
 */

package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Confidence tiers for rule-based extraction.
const (
	confKeywordRegex = 1.0
	confRegexOnly    = 0.7
	confInferred     = 0.4
	confNotFound     = 0.0
)

var (
	collapseRE = regexp.MustCompile(`\s+`)

	invoiceNumberRE = regexp.MustCompile(`(?i)номер\s*(?:на\s*фактура)?[:\s]*([0-9]+)`)
	invoiceDateRE   = regexp.MustCompile(`(?i)дата[:\s]*(\d{2}\.\d{2}\.\d{4})`)
	supplierRE      = regexp.MustCompile(`(?i)доставчик[:\s]*([^\n]+)`)
	clientRE        = regexp.MustCompile(`(?i)клиент[:\s]*([^\n]+)`)
	addressRE       = regexp.MustCompile(`(?:^|\s)(гр\.\s*[^\n]+)`)
	eikRE           = regexp.MustCompile(`(?i)еик[:\s]*([0-9]{9,13})`)
	vatNumberRE     = regexp.MustCompile(`(?i)ддс[:\s]*(bg[0-9]{9,13})`)
	serviceRE       = regexp.MustCompile(`(?i)услуга[:\s]*([^\n]+)`)
	qtyPriceRE      = regexp.MustCompile(`(?i)(\d+)\s*бр\.?\s*.*?([\d.,]+)\s*лв`)
	accountRE       = regexp.MustCompile(`(?i)счетоводна\s+сметка[:\s]*(\d+)`)
	subtotalRE      = regexp.MustCompile(`(?i)данъчна\s+основа[:\s]*([\d.,]+)\s*лв`)
	vatAmountRE     = regexp.MustCompile(`(?i)ддс[:\s]*([\d.,]+)\s*лв`)
	totalRE         = regexp.MustCompile(`(?i)всичко[:\s]*([\d.,]+)\s*лв`)
)

// normalizeRuleText lowercases and collapses whitespace to single spaces.
func normalizeRuleText(text string) string {
	return strings.ToLower(strings.TrimSpace(collapseRE.ReplaceAllString(text, " ")))
}

// parseDecimal parses a Bulgarian-style number where comma or dot may serve
// as the decimal separator. Returns nil on failure.
func parseDecimal(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// firstMatch returns the first capture group and its confidence.
func firstMatch(re *regexp.Regexp, text string) (*string, float64) {
	if m := re.FindStringSubmatch(text); m != nil {
		v := strings.TrimSpace(m[1])
		return &v, confRegexOnly
	}
	return nil, confNotFound
}

// lastMatch returns the last occurrence's capture group and its confidence.
// VAT amount lines repeat the ДДС keyword used by the VAT-number line, so the
// final occurrence is the monetary one.
func lastMatch(re *regexp.Regexp, text string) (*string, float64) {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, confNotFound
	}
	v := strings.TrimSpace(matches[len(matches)-1][1])
	return &v, confRegexOnly
}

// ExtractInvoiceRules extracts structured fields from Bulgarian invoice OCR
// text using deterministic rules. It never fails: internal faults yield an
// all-null extraction with empty confidence scores.
func ExtractInvoiceRules(ocrText string) (result RuleExtraction) {
	defer func() {
		if r := recover(); r != nil {
			result = RuleExtraction{ConfidenceScores: map[string]float64{}}
		}
	}()
	return extractInvoiceRules(ocrText)
}

func extractInvoiceRules(ocrText string) RuleExtraction {
	text := normalizeRuleText(ocrText)
	if text == "" {
		return RuleExtraction{ConfidenceScores: map[string]float64{}}
	}

	scores := map[string]float64{}
	out := RuleExtraction{ConfidenceScores: scores}

	out.InvoiceNumber, scores["invoiceNumber"] = firstMatch(invoiceNumberRE, text)
	out.InvoiceDate, scores["invoiceDate"] = firstMatch(invoiceDateRE, text)

	// Supplier and client names follow their keyword on the same normalized
	// line, so a match counts as keyword-anchored.
	if name, c := firstMatch(supplierRE, text); name != nil {
		out.Supplier.Name = name
		scores["supplier.name"] = confKeywordRegex
	} else {
		scores["supplier.name"] = c
	}
	if name, c := firstMatch(clientRE, text); name != nil {
		out.Client.Name = name
		scores["client.name"] = confKeywordRegex
	} else {
		scores["client.name"] = c
	}

	if m := addressRE.FindStringSubmatch(text); m != nil {
		out.Supplier.Address = strPtr(strings.TrimSpace(m[1]))
		scores["supplier.address"] = confKeywordRegex
	} else {
		scores["supplier.address"] = confNotFound
	}

	// First ЕИК belongs to the supplier, second to the client.
	eiks := eikRE.FindAllStringSubmatch(text, -1)
	if len(eiks) >= 1 {
		out.Supplier.EIK = strPtr(eiks[0][1])
		scores["supplier.eik"] = confRegexOnly
	} else {
		scores["supplier.eik"] = confNotFound
	}
	if len(eiks) >= 2 {
		out.Client.EIK = strPtr(eiks[1][1])
		scores["client.eik"] = confRegexOnly
	} else {
		scores["client.eik"] = confNotFound
	}

	vats := vatNumberRE.FindAllStringSubmatch(text, -1)
	if len(vats) >= 1 {
		out.Supplier.VAT = strPtr(strings.ToUpper(vats[0][1]))
		scores["supplier.vat"] = confRegexOnly
	} else {
		scores["supplier.vat"] = confNotFound
	}
	if len(vats) >= 2 {
		out.Client.VAT = strPtr(strings.ToUpper(vats[1][1]))
		scores["client.vat"] = confRegexOnly
	} else {
		scores["client.vat"] = confNotFound
	}

	out.Service.Description, scores["service.description"] = firstMatch(serviceRE, text)

	if m := qtyPriceRE.FindStringSubmatch(text); m != nil {
		out.Service.Quantity = strPtr(m[1] + " бр.")
		out.Service.UnitPrice = parseDecimal(m[2])
	}
	scores["service.quantity"] = boolConf(out.Service.Quantity != nil, confRegexOnly)
	scores["service.unitPrice"] = boolConf(out.Service.UnitPrice != nil, confRegexOnly)

	// Single-item invoices state no separate line total; the unit price
	// stands in for it.
	out.Service.Total = out.Service.UnitPrice
	scores["service.total"] = boolConf(out.Service.Total != nil, confRegexOnly)

	out.AccountingAccount, scores["accountingAccount"] = firstMatch(accountRE, text)

	if s, c := firstMatch(subtotalRE, text); s != nil {
		out.Amounts.Subtotal = parseDecimal(*s)
		scores["amounts.subtotal"] = boolConf(out.Amounts.Subtotal != nil, c)
	} else {
		scores["amounts.subtotal"] = confNotFound
	}

	if s, c := lastMatch(vatAmountRE, text); s != nil {
		out.Amounts.VAT = parseDecimal(*s)
		scores["amounts.vat"] = boolConf(out.Amounts.VAT != nil, c)
	} else {
		scores["amounts.vat"] = confNotFound
	}

	if s, c := firstMatch(totalRE, text); s != nil {
		out.Amounts.Total = parseDecimal(*s)
		scores["amounts.total"] = boolConf(out.Amounts.Total != nil, c)
	} else {
		scores["amounts.total"] = confNotFound
	}

	if strings.Contains(text, "лв") {
		out.Amounts.Currency = strPtr("BGN")
		scores["amounts.currency"] = confInferred
	} else {
		scores["amounts.currency"] = confNotFound
	}

	return out
}

func boolConf(found bool, conf float64) float64 {
	if found {
		return conf
	}
	return confNotFound
}
