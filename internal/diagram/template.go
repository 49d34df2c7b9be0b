package diagram

import (
	"fmt"

	"github.com/pnid-studio/backend/internal/models"
)

// TemplateResult lists what a process-unit template created.
type TemplateResult struct {
	Template  string   `json:"template"`
	Equipment []string `json:"equipment"`
	Pipelines []string `json:"pipelines"`
}

// TemplateNames lists the available process-unit templates.
func TemplateNames() []string {
	return []string{"pump-station", "distillation-column"}
}

// ApplyTemplate drops a pre-wired process unit at the origin using the
// ordinary place/connect/route operations. Application is atomic: if
// any step is rejected or a connection cannot be routed, everything the
// template created is removed and the error returned.
func (d *Diagram) ApplyTemplate(name string, origin models.Point) (*TemplateResult, error) {
	var build func(*templateBuilder) error
	switch name {
	case "pump-station":
		build = buildPumpStation
	case "distillation-column":
		build = buildDistillationColumn
	default:
		return nil, rejectf(RejectUnknownType, "no template %q", name)
	}

	tb := &templateBuilder{d: d, origin: origin, result: &TemplateResult{Template: name}}
	if err := build(tb); err != nil {
		tb.rollback()
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return tb.result, nil
}

// templateBuilder accumulates created entities so a failed template can
// be unwound. Mutations stay validate-then-commit underneath, so the
// diagram is consistent at every step of the unwind.
type templateBuilder struct {
	d      *Diagram
	origin models.Point
	result *TemplateResult
}

func (tb *templateBuilder) place(typeID string, dx, dy int, rot models.Rotation) (*models.Equipment, error) {
	e, err := tb.d.Place(typeID, tb.origin.Add(dx, dy), rot)
	if err != nil {
		return nil, err
	}
	tb.result.Equipment = append(tb.result.Equipment, e.Tag)
	return e, nil
}

func (tb *templateBuilder) connect(classID string, from, to models.PortRef) error {
	p, err := tb.d.Connect(classID, from, to)
	if err != nil {
		return err
	}
	tb.result.Pipelines = append(tb.result.Pipelines, p.Tag)
	if _, err := tb.d.Route(p.Tag); err != nil {
		return err
	}
	return nil
}

func (tb *templateBuilder) rollback() {
	for i := len(tb.result.Pipelines) - 1; i >= 0; i-- {
		_ = tb.d.RemovePipeline(tb.result.Pipelines[i])
	}
	for i := len(tb.result.Equipment) - 1; i >= 0; i-- {
		_ = tb.d.RemoveEquipment(tb.result.Equipment[i])
	}
}

func port(e *models.Equipment, name string) models.PortRef {
	return models.PortRef{Equipment: e.Tag, Port: name}
}

// buildPumpStation creates a feed tank with two parallel pumps and a
// control valve on the lead pump's discharge.
func buildPumpStation(tb *templateBuilder) error {
	tank, err := tb.place("tank-storage", 0, 0, models.Rotate0)
	if err != nil {
		return err
	}
	pumpA, err := tb.place("pump-centrifugal", 16, 2, models.Rotate0)
	if err != nil {
		return err
	}
	pumpB, err := tb.place("pump-centrifugal", 16, 12, models.Rotate0)
	if err != nil {
		return err
	}
	fcv, err := tb.place("valve-control-flow", 26, 0, models.Rotate0)
	if err != nil {
		return err
	}

	if err := tb.connect("process-pw", port(tank, "outlet"), port(pumpA, "suction")); err != nil {
		return err
	}
	if err := tb.connect("process-pw", port(tank, "outlet"), port(pumpB, "suction")); err != nil {
		return err
	}
	if err := tb.connect("process-pw", port(pumpA, "discharge"), port(fcv, "inlet")); err != nil {
		return err
	}
	return nil
}

// buildDistillationColumn creates a column with an overhead condenser,
// a reboiler and a bottoms pump.
func buildDistillationColumn(tb *templateBuilder) error {
	column, err := tb.place("column-distillation", 0, 4, models.Rotate0)
	if err != nil {
		return err
	}
	condenser, err := tb.place("exchanger-shell-tube", 14, 0, models.Rotate0)
	if err != nil {
		return err
	}
	reboiler, err := tb.place("exchanger-shell-tube", 14, 16, models.Rotate0)
	if err != nil {
		return err
	}
	pump, err := tb.place("pump-centrifugal", 2, 24, models.Rotate0)
	if err != nil {
		return err
	}

	if err := tb.connect("process-pg", port(column, "overhead"), port(condenser, "tube-in")); err != nil {
		return err
	}
	if err := tb.connect("process-steam", port(reboiler, "tube-out"), port(column, "reboiler-return")); err != nil {
		return err
	}
	if err := tb.connect("process-pw", port(column, "bottoms"), port(pump, "suction")); err != nil {
		return err
	}
	return nil
}
