package domain

// Address is a postal address.
type Address struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Street      string `json:"street"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Subdivision string `json:"subdivision"`
}

// MissingField returns the first required field that is empty, or "".
func (a Address) MissingField() string {
	fields := [...]struct {
		name, value string
	}{
		{"name", a.Name},
		{"street", a.Street},
		{"zip", a.Zip},
		{"city", a.City},
		{"country", a.Country},
		{"subdivision", a.Subdivision},
	}
	for _, f := range fields {
		if f.value == "" {
			return f.name
		}
	}
	return ""
}

// Warehouse is the stock location goods are shipped from.
type Warehouse struct {
	ID            int64
	Name          string
	Address       *Address
	ReturnAddress *Address
}
