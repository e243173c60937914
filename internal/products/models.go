package products

import (
	"bytes"
	"encoding/json"
)

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type NewProduct struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
}

// Patch holds the fields supplied in a partial update. Nil pointers are left
// untouched; Description distinguishes "omitted" from an explicit null.
type Patch struct {
	Name        *string
	Description NullString
	Price       *float64
	Stock       *int
}

func (p Patch) Empty() bool {
	return p.Name == nil && !p.Description.Set && p.Price == nil && p.Stock == nil
}

// NullString is a JSON field that remembers whether it was present at all.
type NullString struct {
	Set   bool
	Value *string
}

func (n *NullString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(b, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type Filter struct {
	Name     string
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	MaxStock *int
	Page     int
	PageSize int
}

type Page struct {
	Items    []Product `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}
