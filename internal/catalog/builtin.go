package catalog

import "github.com/pnid-studio/backend/internal/models"

// Builtin component library. Footprints are in grid cells; port offsets
// sit on the footprint edge with the outward normal they leave through.
// The set covers the common ISA-5.1 symbols a process sheet needs;
// project-specific types arrive via CSV upload.

func builtinEquipment() []models.EquipmentType {
	return []models.EquipmentType{
		{
			ID: "pump-centrifugal", Description: "Centrifugal pump", Category: models.CategoryEquipment,
			TagPrefix: "P", Width: 6, Height: 6, Symbol: "pump-centrifugal",
			Ports: []models.PortSpec{
				{Name: "suction", Offset: models.Point{X: 0, Y: 4}, Dir: models.DirLeft},
				{Name: "discharge", Offset: models.Point{X: 3, Y: 0}, Dir: models.DirUp},
				{Name: "drain", Offset: models.Point{X: 1, Y: 5}, Dir: models.DirDown},
			},
		},
		{
			ID: "vessel-vertical", Description: "Vertical vessel", Category: models.CategoryVessel,
			TagPrefix: "V", Width: 8, Height: 12, Symbol: "vessel-vertical",
			Ports: []models.PortSpec{
				{Name: "top", Offset: models.Point{X: 4, Y: 0}, Dir: models.DirUp},
				{Name: "bottom", Offset: models.Point{X: 4, Y: 11}, Dir: models.DirDown},
				{Name: "inlet", Offset: models.Point{X: 0, Y: 4}, Dir: models.DirLeft},
				{Name: "outlet", Offset: models.Point{X: 7, Y: 8}, Dir: models.DirRight},
				{Name: "vent", Offset: models.Point{X: 6, Y: 0}, Dir: models.DirUp},
				{Name: "drain", Offset: models.Point{X: 2, Y: 11}, Dir: models.DirDown},
				{Name: "lt-high", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
				{Name: "lt-low", Offset: models.Point{X: 0, Y: 10}, Dir: models.DirLeft},
			},
		},
		{
			ID: "tank-storage", Description: "Storage tank", Category: models.CategoryVessel,
			TagPrefix: "TK", Width: 10, Height: 8, Symbol: "tank-storage",
			Ports: []models.PortSpec{
				{Name: "top", Offset: models.Point{X: 5, Y: 0}, Dir: models.DirUp},
				{Name: "inlet", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
				{Name: "outlet", Offset: models.Point{X: 9, Y: 6}, Dir: models.DirRight},
				{Name: "drain", Offset: models.Point{X: 3, Y: 7}, Dir: models.DirDown},
			},
		},
		{
			ID: "column-distillation", Description: "Distillation column", Category: models.CategoryVessel,
			TagPrefix: "C", Width: 8, Height: 16, Symbol: "column-distillation",
			Ports: []models.PortSpec{
				{Name: "feed", Offset: models.Point{X: 0, Y: 8}, Dir: models.DirLeft},
				{Name: "overhead", Offset: models.Point{X: 4, Y: 0}, Dir: models.DirUp},
				{Name: "bottoms", Offset: models.Point{X: 4, Y: 15}, Dir: models.DirDown},
				{Name: "reflux", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
				{Name: "reboiler-return", Offset: models.Point{X: 7, Y: 13}, Dir: models.DirRight},
			},
		},
		{
			ID: "exchanger-shell-tube", Description: "Shell and tube exchanger", Category: models.CategoryEquipment,
			TagPrefix: "E", Width: 10, Height: 4, Symbol: "exchanger-shell-tube",
			Ports: []models.PortSpec{
				{Name: "tube-in", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
				{Name: "tube-out", Offset: models.Point{X: 9, Y: 2}, Dir: models.DirRight},
				{Name: "shell-in", Offset: models.Point{X: 3, Y: 0}, Dir: models.DirUp},
				{Name: "shell-out", Offset: models.Point{X: 7, Y: 3}, Dir: models.DirDown},
			},
		},
		{
			ID: "filter-basket", Description: "Basket filter", Category: models.CategoryEquipment,
			TagPrefix: "FL", Width: 6, Height: 8, Symbol: "filter-basket",
			Ports: []models.PortSpec{
				{Name: "inlet", Offset: models.Point{X: 3, Y: 0}, Dir: models.DirUp},
				{Name: "outlet", Offset: models.Point{X: 3, Y: 7}, Dir: models.DirDown},
				{Name: "drain", Offset: models.Point{X: 1, Y: 7}, Dir: models.DirDown},
				{Name: "dp-high", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
				{Name: "dp-low", Offset: models.Point{X: 0, Y: 5}, Dir: models.DirLeft},
			},
		},

		// Field instruments. The process port taps the measured line or
		// vessel; the signal port carries the loop wiring.
		instrument("transmitter-flow", "Flow transmitter", "FT"),
		instrument("transmitter-pressure", "Pressure transmitter", "PT"),
		instrument("transmitter-level", "Level transmitter", "LT"),
		instrument("transmitter-temp", "Temperature transmitter", "TT"),
		instrument("indicator-pressure", "Pressure indicator", "PI"),

		// Panel instruments.
		controller("controller-flow", "Flow controller", "FIC"),
		controller("controller-pressure", "Pressure controller", "PIC"),
		controller("controller-level", "Level controller", "LIC"),
		controller("controller-temp", "Temperature controller", "TIC"),
		controller("alarm-level-high", "Level alarm high", "LAH"),

		// Actuated valves are nodes, not inline fittings: routing treats
		// them as obstacles and the loop analyzer needs their signal port.
		actuatedValve("valve-control-flow", "Flow control valve", "FCV"),
		actuatedValve("valve-control-pressure", "Pressure control valve", "PCV"),
		actuatedValve("valve-control-level", "Level control valve", "LCV"),
		actuatedValve("valve-control-temp", "Temperature control valve", "TCV"),
		actuatedValve("valve-shutdown", "Shutdown valve", "SDV"),
		actuatedValve("valve-onoff", "On-off valve", "XV"),
		{
			ID: "valve-relief", Description: "Pressure safety valve", Category: models.CategoryEquipment,
			TagPrefix: "PSV", Width: 5, Height: 5, Symbol: "valve-relief",
			Ports: []models.PortSpec{
				{Name: "inlet", Offset: models.Point{X: 1, Y: 4}, Dir: models.DirDown},
				{Name: "outlet", Offset: models.Point{X: 4, Y: 1}, Dir: models.DirRight},
			},
		},
		{
			ID: "connector-offpage", Description: "Off-page connector", Category: models.CategoryConnector,
			TagPrefix: "OPC", Width: 3, Height: 2, Symbol: "connector-offpage",
			Ports: []models.PortSpec{
				{Name: "tie", Offset: models.Point{X: 0, Y: 1}, Dir: models.DirLeft},
			},
		},
	}
}

// instrument builds a 5x5 field instrument record with a process tap
// below and a signal connection above. The odd footprint keeps both
// ports on the symbol centerline.
func instrument(id, desc, prefix string) models.EquipmentType {
	return models.EquipmentType{
		ID: id, Description: desc, Category: models.CategoryInstrument,
		TagPrefix: prefix, Width: 5, Height: 5, Symbol: "inst-field",
		Ports: []models.PortSpec{
			{Name: "process", Offset: models.Point{X: 2, Y: 4}, Dir: models.DirDown},
			{Name: "signal", Offset: models.Point{X: 2, Y: 0}, Dir: models.DirUp},
		},
	}
}

// controller builds a 5x5 panel instrument record with signal in/out.
func controller(id, desc, prefix string) models.EquipmentType {
	return models.EquipmentType{
		ID: id, Description: desc, Category: models.CategoryInstrument,
		TagPrefix: prefix, Width: 5, Height: 5, Symbol: "inst-panel",
		Ports: []models.PortSpec{
			{Name: "in", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
			{Name: "out", Offset: models.Point{X: 4, Y: 2}, Dir: models.DirRight},
		},
	}
}

// actuatedValve builds a 5x5 valve-with-actuator record: process inlet
// and outlet plus the signal port on the actuator.
func actuatedValve(id, desc, prefix string) models.EquipmentType {
	return models.EquipmentType{
		ID: id, Description: desc, Category: models.CategoryEquipment,
		TagPrefix: prefix, Width: 5, Height: 5, Symbol: "valve-actuated",
		Ports: []models.PortSpec{
			{Name: "inlet", Offset: models.Point{X: 0, Y: 2}, Dir: models.DirLeft},
			{Name: "outlet", Offset: models.Point{X: 4, Y: 2}, Dir: models.DirRight},
			{Name: "signal", Offset: models.Point{X: 2, Y: 0}, Dir: models.DirUp},
		},
	}
}

func builtinPipeClasses() []models.PipelineClass {
	return []models.PipelineClass{
		{ID: "process-pg", Description: "Process gas", Kind: models.LineProcess, TagPrefix: "L", Service: "PG", SizeInches: "2", Material: "CS"},
		{ID: "process-pw", Description: "Process water", Kind: models.LineProcess, TagPrefix: "L", Service: "PW", SizeInches: "3", Material: "CS"},
		{ID: "process-steam", Description: "Steam", Kind: models.LineProcess, TagPrefix: "L", Service: "ST", SizeInches: "4", Material: "SS"},
		{ID: "process-relief", Description: "Relief header", Kind: models.LineProcess, TagPrefix: "L", Service: "RV", SizeInches: "3", Material: "CS"},
		{ID: "signal-pneumatic", Description: "Pneumatic signal", Kind: models.LineInstrument, TagPrefix: "S", Service: "IA", SizeInches: "", Material: ""},
		{ID: "signal-electric", Description: "Electric signal", Kind: models.LineInstrument, TagPrefix: "S", Service: "ES", SizeInches: "", Material: ""},
		{ID: "power-electric", Description: "Electric supply", Kind: models.LineElectric, TagPrefix: "W", Service: "EP", SizeInches: "", Material: ""},
	}
}

func builtinInline() []models.InlineType {
	return []models.InlineType{
		{ID: "valve-gate", Description: "Gate valve", TagPrefix: "HV", Symbol: "valve-gate", Kind: models.LineProcess},
		{ID: "valve-globe", Description: "Globe valve", TagPrefix: "GLV", Symbol: "valve-globe", Kind: models.LineProcess},
		{ID: "valve-check", Description: "Check valve", TagPrefix: "NRV", Symbol: "valve-check", Kind: models.LineProcess},
		{ID: "reducer", Description: "Concentric reducer", TagPrefix: "RED", Symbol: "reducer", Kind: models.LineProcess},
		{ID: "strainer", Description: "Y-strainer", TagPrefix: "STR", Symbol: "strainer", Kind: models.LineProcess},
		{ID: "sight-glass", Description: "Sight glass", TagPrefix: "SG", Symbol: "sight-glass", Kind: models.LineProcess},
	}
}
