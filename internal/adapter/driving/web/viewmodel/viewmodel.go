// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// ColumnViewModel is one table column, in configured property order.
type ColumnViewModel struct {
	Name  string
	Label string
}

// CellViewModel holds one rendered table cell. HTML is set instead of Text for
// rich properties and is already sanitized.
type CellViewModel struct {
	Text string
	HTML string
	Rich bool
}

// RowViewModel is one record in the table.
type RowViewModel struct {
	ID    string
	Cells []CellViewModel
}

// HomeViewModel holds everything the record table page renders.
type HomeViewModel struct {
	ObjectType string
	Columns    []ColumnViewModel
	Rows       []RowViewModel
	Error      string
	FormPath   string
}

// FieldViewModel is one form input, one per configured property.
type FieldViewModel struct {
	Name      string
	Label     string
	Value     string
	Multiline bool
}

// FormViewModel holds everything the create form renders.
type FormViewModel struct {
	ObjectType string
	Action     string
	CSRFField  string
	CSRFToken  string
	Fields     []FieldViewModel
	Error      string
	BackPath   string
}
