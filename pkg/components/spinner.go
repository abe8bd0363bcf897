package components

import (
	"github.com/recera/graphpanel/pkg/builder"
	"github.com/recera/graphpanel/pkg/vdom"
)

// SpinnerProps defines the properties for the LoadingSpinner component
type SpinnerProps struct {
	Size  string // "small", "medium", "large"
	Color string // CSS color value
	Text  string // Optional loading text
	Class string
}

// LoadingSpinner creates the busy indicator shown while a render is pending
func LoadingSpinner(props SpinnerProps) *vdom.VNode {
	if props.Size == "" {
		props.Size = "medium"
	}
	if props.Color == "" {
		props.Color = "#3b82f6"
	}

	var size string
	switch props.Size {
	case "small":
		size = "16"
	case "large":
		size = "48"
	default:
		size = "24"
	}

	spinner := builder.Svg().
		Attr("width", size).
		Attr("height", size).
		Attr("viewBox", "0 0 24 24").
		Attr("fill", "none").
		Class("spinner", "spinner-"+props.Size, props.Class).
		Role("img").
		Aria("label", "Loading").
		Children(
			builder.Circle().
				Attr("cx", "12").
				Attr("cy", "12").
				Attr("r", "10").
				Attr("stroke", props.Color).
				Attr("stroke-width", "2").
				Attr("stroke-opacity", "0.25").
				Build(),
			builder.Circle().
				Attr("cx", "12").
				Attr("cy", "12").
				Attr("r", "10").
				Attr("stroke", props.Color).
				Attr("stroke-width", "2").
				Attr("stroke-linecap", "round").
				Attr("stroke-dasharray", "32").
				Attr("stroke-dashoffset", "32").
				Class("spinner-track").
				Build(),
		).Build()

	if props.Text == "" {
		return spinner
	}
	return builder.Div().
		Class("spinner-container").
		Children(
			spinner,
			builder.Span().Class("spinner-text").Text(props.Text).Build(),
		).Build()
}

// Message is the plain text shown in the region when there is no image
func Message(text string) *vdom.VNode {
	return builder.P().Class("region-message").Text(text).Build()
}
