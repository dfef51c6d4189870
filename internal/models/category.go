// internal/models/category.go
package models

// Category is the decree classification of a candidate.
type Category string

const (
	CategoryTendik      Category = "Tendik"
	CategoryGTT         Category = "GTT"
	CategoryGTY         Category = "GTY"
	CategoryKamadPNS    Category = "KamadPNS"
	CategoryKamadNonPNS Category = "KamadNonPNS"
	CategoryKamadPLT    Category = "KamadPLT"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTendik,
	CategoryGTT,
	CategoryGTY,
	CategoryKamadPNS,
	CategoryKamadNonPNS,
	CategoryKamadPLT,
}

func (c Category) String() string { return string(c) }

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsKamad reports whether the category is a head-of-institution variant.
func (c Category) IsKamad() bool {
	return c == CategoryKamadPNS || c == CategoryKamadNonPNS || c == CategoryKamadPLT
}

// Label is the human readable decree type printed on documents.
func (c Category) Label() string {
	switch c {
	case CategoryTendik:
		return "Tenaga Kependidikan"
	case CategoryGTT:
		return "Guru Tidak Tetap"
	case CategoryGTY:
		return "Guru Tetap Yayasan"
	case CategoryKamadPNS:
		return "Kepala Madrasah PNS"
	case CategoryKamadNonPNS:
		return "Kepala Madrasah Non PNS"
	case CategoryKamadPLT:
		return "Plt. Kepala Madrasah"
	default:
		return string(c)
	}
}
