package prompt

import (
	"fmt"
	"math"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/schema"
)

// NoFinancialData is written instead of the financials block when no figures are known.
const NoFinancialData = "Financials: no financial data available"

// BuildCompanyContext renders the known facts about a company as a plain-text
// block for prompts. Only present fields are written, in schema order, so the
// output is identical for identical input.
func BuildCompanyContext(c *entity.Company) string {
	values := c.FieldValues()

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", c.Name)
	if c.PipelineStage != nil {
		fmt.Fprintf(&b, "Pipeline stage: %s\n", *c.PipelineStage)
	}

	var financials []string
	for _, f := range schema.Companies {
		if f.Name == "name" {
			continue
		}
		v := values[f.Name]
		if v == nil {
			continue
		}
		if f.IsFinancial() {
			financials = append(financials, fmt.Sprintf("- %s: %s", financialLabel(f.Name), FormatUSDMillions(v.(float64))))
			continue
		}
		s := strings.TrimSpace(v.(string))
		if s == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", fieldLabel(f.Name), s)
	}

	if len(financials) == 0 {
		b.WriteString(NoFinancialData)
		return b.String()
	}
	b.WriteString("Financials:\n")
	b.WriteString(strings.Join(financials, "\n"))
	return b.String()
}

// FormatUSDMillions formats a USD-millions figure, switching to billions at 1,000.
func FormatUSDMillions(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	if v >= 1000 {
		return fmt.Sprintf("%s$%.2fB", sign, v/1000)
	}
	return fmt.Sprintf("%s$%.1fM", sign, v)
}

func fieldLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}

// financialLabel maps revenue_2023_usd_mn to "Revenue FY2023" and so on.
func financialLabel(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return fieldLabel(name)
	}
	year := parts[1]
	switch parts[0] {
	case "revenue":
		return "Revenue FY" + year
	case "ebitda":
		return "EBITDA FY" + year
	case "ev":
		return "Enterprise value (" + year + ")"
	}
	return fieldLabel(name)
}
