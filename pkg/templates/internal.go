// Package templates holds the predefined structural templates used for
// internal operational notifications. These are built in code with no
// database lookup; tenants cannot alter them.
package templates

import (
	"github.com/authcove/authcove/pkg/mjml"
)

// InternalNotification builds the structural template wrapping an internal
// operational message. The content is raw markup produced by our own code.
func InternalNotification(title, content string) mjml.Document {
	return mjml.Document{
		Title: title,
		Sections: []mjml.Component{
			mjml.Section{
				Children: []mjml.Component{
					mjml.Text{Content: title, FontSize: "20px", Color: "#1a1a1a"},
					mjml.Divider{},
					mjml.Text{Content: content, FontSize: "14px", Color: "#333333"},
				},
			},
			mjml.Section{
				BackgroundColor: "#f7f7f7",
				Children: []mjml.Component{
					mjml.Text{
						Content:  "This is an automated operational notification.",
						FontSize: "11px",
						Color:    "#888888",
						Align:    "center",
					},
				},
			},
		},
	}
}
