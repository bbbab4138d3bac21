// Package schema defines the protocol types exchanged with the host process.
//
// JSON keys follow the host's serde representation: enum variants are
// PascalCase object keys ("Window", "Create", "Info"), struct fields are
// snake_case.
package schema

// WindowControl is an action applied to an existing window.
type WindowControl string

const (
	ControlClose      WindowControl = "Close"
	ControlMinimize   WindowControl = "Minimize"
	ControlMaximize   WindowControl = "Maximize"
	ControlFullscreen WindowControl = "Fullscreen"
	ControlDrag       WindowControl = "Drag"
)

// WindowOptions configures a window created by the host.
type WindowOptions struct {
	DevTools      bool   `json:"dev_tools" yaml:"dev_tools"`
	Title         string `json:"title" yaml:"title"`
	URL           string `json:"url" yaml:"url"`
	NoDecorations bool   `json:"no_decorations" yaml:"no_decorations"`
	Transparent   bool   `json:"transparent" yaml:"transparent"`
	Width         int    `json:"width" yaml:"width"`
	Height        int    `json:"height" yaml:"height"`
	Icon          string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// DefaultWindowOptions returns the options used for every field the caller
// leaves unset.
func DefaultWindowOptions() WindowOptions {
	return WindowOptions{
		DevTools:      false,
		Title:         "WebView",
		URL:           "./index.html",
		NoDecorations: false,
		Transparent:   false,
		Width:         800,
		Height:        600,
	}
}

// WindowPatch holds caller overrides for WindowOptions. A nil field keeps the
// value it is applied to.
type WindowPatch struct {
	DevTools      *bool   `json:"dev_tools,omitempty" yaml:"dev_tools,omitempty"`
	Title         *string `json:"title,omitempty" yaml:"title,omitempty"`
	URL           *string `json:"url,omitempty" yaml:"url,omitempty"`
	NoDecorations *bool   `json:"no_decorations,omitempty" yaml:"no_decorations,omitempty"`
	Transparent   *bool   `json:"transparent,omitempty" yaml:"transparent,omitempty"`
	Width         *int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height        *int    `json:"height,omitempty" yaml:"height,omitempty"`
	Icon          *string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Apply returns a copy of o with every non-nil field of p overriding it.
func (o WindowOptions) Apply(p WindowPatch) WindowOptions {
	if p.DevTools != nil {
		o.DevTools = *p.DevTools
	}
	if p.Title != nil {
		o.Title = *p.Title
	}
	if p.URL != nil {
		o.URL = *p.URL
	}
	if p.NoDecorations != nil {
		o.NoDecorations = *p.NoDecorations
	}
	if p.Transparent != nil {
		o.Transparent = *p.Transparent
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.Icon != nil {
		o.Icon = *p.Icon
	}
	return o
}

// IsZero reports whether p overrides nothing.
func (p WindowPatch) IsZero() bool {
	return p == WindowPatch{}
}

func String(v string) *string { return &v }

func Bool(v bool) *bool { return &v }

func Int(v int) *int { return &v }

// WindowInfo describes a live window, as returned by Windows/Window requests.
type WindowInfo struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Fullscreen bool   `json:"fullscreen"`
}
