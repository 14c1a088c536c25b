package config

import (
	"os"
	"strings"
)

// StrictSaleTotalsValidation rejects sales/purchases whose client-supplied
// grand total does not match the server-side recomputation. When off (the
// default) client totals are advisory: the server recomputes and stores its
// own figures.
//
// Set via env:
// - STRICT_SALE_TOTALS=true
func StrictSaleTotalsValidation() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_SALE_TOTALS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
