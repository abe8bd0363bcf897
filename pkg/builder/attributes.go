package builder

// === Form Attributes ===

// Disabled sets the disabled attribute
func (b *ElementBuilder) Disabled(disabled bool) *ElementBuilder {
	if disabled {
		b.props["disabled"] = true
	}
	return b
}

// Required sets the required attribute
func (b *ElementBuilder) Required(required bool) *ElementBuilder {
	if required {
		b.props["required"] = true
	}
	return b
}

// Checked sets the checked attribute
func (b *ElementBuilder) Checked(checked bool) *ElementBuilder {
	if checked {
		b.props["checked"] = true
	}
	return b
}

// Selected sets the selected attribute
func (b *ElementBuilder) Selected(selected bool) *ElementBuilder {
	if selected {
		b.props["selected"] = true
	}
	return b
}

// Name sets the name attribute
func (b *ElementBuilder) Name(name string) *ElementBuilder {
	b.props["name"] = name
	return b
}

// Value sets the value attribute
func (b *ElementBuilder) Value(value string) *ElementBuilder {
	b.props["value"] = value
	return b
}

// Type sets the type attribute
func (b *ElementBuilder) Type(t string) *ElementBuilder {
	b.props["type"] = t
	return b
}

// Placeholder sets the placeholder attribute
func (b *ElementBuilder) Placeholder(placeholder string) *ElementBuilder {
	b.props["placeholder"] = placeholder
	return b
}

// Autocomplete sets the autocomplete attribute
func (b *ElementBuilder) Autocomplete(autocomplete string) *ElementBuilder {
	b.props["autocomplete"] = autocomplete
	return b
}

// For sets the for attribute of a label
func (b *ElementBuilder) For(forID string) *ElementBuilder {
	b.props["for"] = forID
	return b
}

// Action sets the action attribute of a form
func (b *ElementBuilder) Action(action string) *ElementBuilder {
	b.props["action"] = action
	return b
}

// Method sets the method attribute of a form
func (b *ElementBuilder) Method(method string) *ElementBuilder {
	b.props["method"] = method
	return b
}

// === Link & Media Attributes ===

// Href sets the href attribute
func (b *ElementBuilder) Href(href string) *ElementBuilder {
	b.props["href"] = href
	return b
}

// Rel sets the rel attribute
func (b *ElementBuilder) Rel(rel string) *ElementBuilder {
	b.props["rel"] = rel
	return b
}

// Src sets the src attribute
func (b *ElementBuilder) Src(src string) *ElementBuilder {
	b.props["src"] = src
	return b
}

// Charset sets the charset attribute
func (b *ElementBuilder) Charset(charset string) *ElementBuilder {
	b.props["charset"] = charset
	return b
}

// === Accessibility ===

// Role sets the role attribute
func (b *ElementBuilder) Role(role string) *ElementBuilder {
	b.props["role"] = role
	return b
}

// Aria sets an aria-* attribute
func (b *ElementBuilder) Aria(key, value string) *ElementBuilder {
	b.props["aria-"+key] = value
	return b
}

// Data sets a data-* attribute
func (b *ElementBuilder) Data(key, value string) *ElementBuilder {
	b.props["data-"+key] = value
	return b
}

// Attr sets any attribute
func (b *ElementBuilder) Attr(key string, value interface{}) *ElementBuilder {
	b.props[key] = value
	return b
}
