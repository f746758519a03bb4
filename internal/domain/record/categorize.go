package record

import "strings"

// CategoryGeneral is the fallback bucket for tests no keyword list claims.
const CategoryGeneral = "General/Other"

// labCategoryRule maps a category to the lowercase substrings that select
// it. Rules are evaluated in declared order and the first match wins, so a
// test name is always assigned to exactly one category.
type labCategoryRule struct {
	category string
	keywords []string
}

// labCategoryRules is data, not code: the table can be swapped or tested
// without touching the matching logic.
var labCategoryRules = []labCategoryRule{
	{"Renal Function", []string{"creatinine", "bun", "egfr", "gfr", "urea"}},
	{"Electrolytes", []string{"potassium", "sodium", "chloride", "bicarbonate", "co2", "magnesium"}},
	{"Hematology", []string{"hemoglobin", "hematocrit", "platelet", "wbc", "rbc", "white blood", "red blood"}},
	{"Endocrine", []string{"glucose", "hba1c", "tsh", "thyroid", "insulin", "cortisol"}},
	{"Protein Studies", []string{"albumin", "globulin", "protein"}},
	{"Bone/Mineral", []string{"calcium", "phosphorus", "phosphate", "vitamin d", "parathyroid", "alkaline phosphatase"}},
}

// CategorizeLab resolves a lab test name to its clinical category via
// case-insensitive substring matching in fixed priority order.
func CategorizeLab(testName string) string {
	name := strings.ToLower(strings.ReplaceAll(testName, "_", " "))
	for _, rule := range labCategoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// LabCategoryOrder returns the display order of categories: the rule table
// order followed by the general bucket.
func LabCategoryOrder() []string {
	order := make([]string, 0, len(labCategoryRules)+1)
	for _, rule := range labCategoryRules {
		order = append(order, rule.category)
	}
	return append(order, CategoryGeneral)
}
