package catalog

import "strings"

// Categories is the fixed list offered by the product form.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports & Outdoors",
	"Books",
	"Automotive",
	"Health & Beauty",
	"Toys & Games",
	"Other",
}

// IsKnownCategory reports whether name is one of Categories, ignoring case.
func IsKnownCategory(name string) bool {
	_, ok := CanonicalCategory(name)
	return ok
}

// CanonicalCategory returns the list spelling of name.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}
