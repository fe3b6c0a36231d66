package entity

import (
	"fmt"
	"strings"
)

// Address is a delivery address. Every field is required for an order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Missing returns the json names of empty fields.
func (a Address) Missing() []string {
	var out []string
	fields := []struct{ name, value string }{
		{"street", a.Street},
		{"city", a.City},
		{"state", a.State},
		{"zipCode", a.ZipCode},
		{"country", a.Country},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out = append(out, f.name)
		}
	}
	return out
}

func (a Address) Validate() error {
	if m := a.Missing(); len(m) > 0 {
		return fmt.Errorf("complete delivery address is required (missing %s)", strings.Join(m, ", "))
	}
	return nil
}
