package web

import (
	"strings"
	"unicode"

	vm "github.com/ericfisherdev/cobjpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// toHomeViewModel converts a record page into the table view model. Columns follow
// the configured property order; rich properties are rendered as sanitized markdown.
func toHomeViewModel(objectType string, properties []string, rich map[string]bool, records model.RecordList, errMsg string) vm.HomeViewModel {
	columns := make([]vm.ColumnViewModel, 0, len(properties))
	for _, name := range properties {
		columns = append(columns, vm.ColumnViewModel{Name: name, Label: propertyLabel(name)})
	}

	rows := make([]vm.RowViewModel, 0, len(records))
	for _, rec := range records {
		cells := make([]vm.CellViewModel, 0, len(properties))
		for _, name := range properties {
			value := rec.Value(name)
			if rich[name] {
				cells = append(cells, vm.CellViewModel{HTML: RenderMarkdown(value), Rich: true})
				continue
			}
			cells = append(cells, vm.CellViewModel{Text: value})
		}
		rows = append(rows, vm.RowViewModel{ID: rec.ID, Cells: cells})
	}

	return vm.HomeViewModel{
		ObjectType: objectType,
		Columns:    columns,
		Rows:       rows,
		Error:      errMsg,
		FormPath:   formPath,
	}
}

// toFormViewModel builds the create form. values pre-fills the inputs, keyed by
// property name; pass nil for an empty form.
func toFormViewModel(objectType string, properties []string, rich map[string]bool, values model.Submission, csrf, errMsg string) vm.FormViewModel {
	fields := make([]vm.FieldViewModel, 0, len(properties))
	for _, name := range properties {
		fields = append(fields, vm.FieldViewModel{
			Name:      name,
			Label:     propertyLabel(name),
			Value:     values[name],
			Multiline: rich[name],
		})
	}

	return vm.FormViewModel{
		ObjectType: objectType,
		Action:     formPath,
		CSRFField:  csrfFormField,
		CSRFToken:  csrf,
		Fields:     fields,
		Error:      errMsg,
		BackPath:   homePath,
	}
}

// propertyLabel turns an internal property name into a column heading:
// "pet_name" becomes "Pet name".
func propertyLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	for i, r := range label {
		return label[:i] + string(unicode.ToUpper(r)) + label[i+len(string(r)):]
	}
	return label
}
