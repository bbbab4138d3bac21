package schema

// Command is a single outbound request to the host. Exactly one of its fields
// is set; constructors below build the valid shapes.
type Command struct {
	Window  *WindowAction   `json:"Window,omitempty"`
	Message *MessageCommand `json:"Message,omitempty"`
	Request map[string]any  `json:"Request,omitempty"`
}

// WindowAction creates or controls a window.
type WindowAction struct {
	Create  *WindowOptions  `json:"Create,omitempty"`
	Control *ControlCommand `json:"Control,omitempty"`
}

type ControlCommand struct {
	Target  int           `json:"target"`
	Control WindowControl `json:"control"`
}

type MessageCommand struct {
	Target int `json:"target"`
	Data   any `json:"data"`
}

func CreateWindow(opts WindowOptions) Command {
	return Command{Window: &WindowAction{Create: &opts}}
}

func ControlWindow(target int, control WindowControl) Command {
	return Command{Window: &WindowAction{Control: &ControlCommand{Target: target, Control: control}}}
}

func SendMessage(target int, data any) Command {
	return Command{Message: &MessageCommand{Target: target, Data: data}}
}

// NewRequest builds {"Request": {kind: params}}. A nil params encodes as null.
func NewRequest(kind string, params any) Command {
	return Command{Request: map[string]any{kind: params}}
}
