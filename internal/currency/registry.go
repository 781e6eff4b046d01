package currency

import "strings"

// Registry is an immutable lookup set of known ISO 4217 currency codes. It is
// built once at startup and shared read-only across the pipeline.
type Registry struct {
	codes map[string]struct{}
}

// NewRegistry builds a registry from the default ISO code list.
func NewRegistry() *Registry {
	return NewRegistryFrom(isoCodes)
}

// NewRegistryFrom builds a registry from an explicit code list. Codes are
// normalised to uppercase.
func NewRegistryFrom(codes []string) *Registry {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return &Registry{codes: set}
}

// Contains reports whether code is a known currency. Matching requires a
// 3-letter alphabetic code; lookups are case-insensitive.
func (r *Registry) Contains(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 3 {
		return false
	}
	for _, ch := range normalized {
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	_, ok := r.codes[normalized]
	return ok
}

// Size returns the number of registered codes.
func (r *Registry) Size() int {
	return len(r.codes)
}

var isoCodes = []string{
	"USD", "EUR", "JPY", "GBP", "AUD", "CAD", "CHF", "CNY", "SEK", "NZD",
	"MXN", "SGD", "HKD", "NOK", "KRW", "TRY", "RUB", "INR", "BRL", "ZAR",
	"DKK", "PLN", "TWD", "THB", "IDR", "HUF", "CZK", "ILS", "CLP", "PHP",
	"AED", "COP", "SAR", "MYR", "RON", "PEN", "PKR", "EGP", "VND", "QAR",
	"KWD", "BHD", "OMR", "JOD", "LBP", "TND", "DZD", "MAD", "IQD", "LYD",
	"AOA", "BWP", "GHS", "KES", "MUR", "NAD", "NGN", "SCR", "TZS", "UGX",
	"XAF", "XOF", "ZMW", "ETB", "MZN", "RWF", "XCD", "BBD", "BZD", "BMD",
	"BND", "KYD", "GYD", "JMD", "SRD", "TTD", "BSD", "CUP", "DOP", "GTQ",
	"HNL", "HTG", "NIO", "PAB", "PYG", "UYU", "BOB", "CRC", "SVC", "AWG",
	"ANG", "FJD", "PGK", "SBD", "TOP", "VUV", "WST", "XPF", "KMF", "MGA",
	"MVR", "SZL", "LSL", "ERN", "GMD", "GNF", "LRD", "SLL", "SLE", "STN",
	"CVE", "AFN", "ALL", "AMD", "AZN", "BYN", "BAM", "BGN", "GEL", "HRK",
	"ISK", "KGS", "KZT", "MDL", "MKD", "RSD", "TJS", "TMT", "UAH", "UZS",
	"BDT", "BTN", "BIF", "KHR", "LKR", "LAK", "MMK", "MNT", "NPR", "IRR",
	"YER", "SOS", "SDG", "SYP", "DJF", "CDF", "MWK", "ZWL",
}
