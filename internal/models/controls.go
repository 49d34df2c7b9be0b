package models

// InstrumentTag is an ISA tag split into its parts: for "FIC-101A" the
// variable is "F", modifiers "IC", number 101, suffix "A".
type InstrumentTag struct {
	Raw       string `json:"raw"`
	Variable  string `json:"variable"`
	Modifiers string `json:"modifiers"`
	Number    int    `json:"number"`
	Suffix    string `json:"suffix,omitempty"`
}

// LoopKind names the measured variable of a control loop.
type LoopKind string

const (
	LoopFlow        LoopKind = "flow"
	LoopPressure    LoopKind = "pressure"
	LoopLevel       LoopKind = "level"
	LoopTemperature LoopKind = "temperature"
	LoopOther       LoopKind = "other"
)

// ControlLoop is a transmitter/controller pair sharing variable and
// loop number, plus the final elements the controller drives.
type ControlLoop struct {
	ID            string   `json:"id"` // "F-101"
	Kind          LoopKind `json:"kind"`
	Transmitter   string   `json:"transmitter"`
	Controller    string   `json:"controller"`
	FinalElements []string `json:"finalElements,omitempty"`
	Complete      bool     `json:"complete"` // transmitter, controller and at least one final element
}

// Interlock is a trip path: an alarm or switch wired to a shutdown element.
type Interlock struct {
	Trigger string `json:"trigger"`
	Target  string `json:"target"`
}

// SignalNetwork is one connected component of the instrument-signal graph.
type SignalNetwork struct {
	Members []string `json:"members"`
}

// ControlReport is the result of control-system analysis over a diagram.
type ControlReport struct {
	Loops      []ControlLoop   `json:"loops"`
	Interlocks []Interlock     `json:"interlocks"`
	Networks   []SignalNetwork `json:"networks"`
}
