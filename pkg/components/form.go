package components

import (
	"github.com/recera/graphpanel/pkg/builder"
	"github.com/recera/graphpanel/pkg/vdom"
)

// SelectOption represents an option in a select dropdown
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// SelectProps defines properties for select components
type SelectProps struct {
	Name        string
	Label       string
	Placeholder string
	Options     []SelectOption
	Required    bool
	ID          string
}

// Select creates a labelled select dropdown. Options keep their order.
func Select(props SelectProps) *vdom.VNode {
	selectID := props.ID
	if selectID == "" && props.Name != "" {
		selectID = "select-" + props.Name
	}

	sel := builder.Select().
		Class("form-select").
		Name(props.Name).
		Required(props.Required)
	if selectID != "" {
		sel.ID(selectID)
	}

	if props.Placeholder != "" {
		sel.Children(builder.Option().
			Value("").
			Disabled(true).
			Selected(true).
			Text(props.Placeholder).
			Build())
	}
	for _, opt := range props.Options {
		sel.Children(Option(opt))
	}

	var label *vdom.VNode
	if props.Label != "" {
		label = builder.Label().Class("form-label").For(selectID).Text(props.Label).Build()
	}
	return builder.Div().
		Class("form-field").
		Children(label, sel.Build()).
		Build()
}

// Option creates a single select option
func Option(opt SelectOption) *vdom.VNode {
	return builder.Option().
		Value(opt.Value).
		Selected(opt.Selected).
		Text(opt.Label).
		Build()
}

// CheckboxProps defines properties for checkbox components
type CheckboxProps struct {
	Name    string
	Label   string
	Checked bool
	ID      string
}

// Checkbox creates a labelled checkbox
func Checkbox(props CheckboxProps) *vdom.VNode {
	checkboxID := props.ID
	if checkboxID == "" && props.Name != "" {
		checkboxID = "checkbox-" + props.Name
	}

	checkbox := builder.Input().
		Type("checkbox").
		Class("form-checkbox").
		Name(props.Name).
		Checked(props.Checked)
	if checkboxID != "" {
		checkbox.ID(checkboxID)
	}

	return builder.Div().
		Class("form-checkbox-container").
		Children(
			checkbox.Build(),
			builder.Label().Class("form-checkbox-label").For(checkboxID).Text(props.Label).Build(),
		).Build()
}

// TextInputProps defines properties for text inputs
type TextInputProps struct {
	Name        string
	Label       string
	Placeholder string
	ID          string
}

// TextInput creates a labelled single line text input
func TextInput(props TextInputProps) *vdom.VNode {
	inputID := props.ID
	if inputID == "" && props.Name != "" {
		inputID = "input-" + props.Name
	}

	input := builder.Input().
		Type("text").
		Class("form-input").
		Name(props.Name).
		Autocomplete("off")
	if inputID != "" {
		input.ID(inputID)
	}
	if props.Placeholder != "" {
		input.Placeholder(props.Placeholder)
	}

	return builder.Div().
		Class("form-field").
		Children(
			builder.Label().Class("form-label").For(inputID).Text(props.Label).Build(),
			input.Build(),
		).Build()
}

// SubmitButton creates the form's submit button
func SubmitButton(text string) *vdom.VNode {
	return builder.Button().
		Type("submit").
		Class("btn", "btn-primary").
		Text(text).
		Build()
}
