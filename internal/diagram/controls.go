package diagram

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/pnid-studio/backend/internal/models"
)

// ParseInstrumentTag splits an ISA tag into measured variable,
// modifiers, loop number and suffix. Returns ok=false for tags that do
// not follow the format.
func ParseInstrumentTag(tag string) (models.InstrumentTag, bool) {
	prefix, n, suffix, ok := SplitTag(tag)
	if !ok || len(prefix) < 2 {
		return models.InstrumentTag{}, false
	}
	return models.InstrumentTag{
		Raw:       tag,
		Variable:  prefix[:1],
		Modifiers: prefix[1:],
		Number:    n,
		Suffix:    suffix,
	}, true
}

func loopKind(variable string) models.LoopKind {
	switch variable {
	case "F":
		return models.LoopFlow
	case "P":
		return models.LoopPressure
	case "L":
		return models.LoopLevel
	case "T":
		return models.LoopTemperature
	}
	return models.LoopOther
}

func isTransmitter(t models.InstrumentTag) bool { return t.Modifiers == "T" }
func isController(t models.InstrumentTag) bool  { return strings.Contains(t.Modifiers, "IC") }
func isFinalElement(t models.InstrumentTag) bool {
	return strings.HasSuffix(t.Modifiers, "CV")
}
func isTripTrigger(prefix string) bool {
	switch prefix {
	case "LAH", "LAL", "PAH", "PAL", "LSH", "LSL", "PSH", "PSL":
		return true
	}
	return false
}
func isTripTarget(prefix string) bool { return prefix == "SDV" || prefix == "XV" }

// AnalyzeControls builds the instrument-signal connectivity graph and
// reports control loops, interlocks and signal networks. Signal edges
// are pipelines whose class is an instrument line with both endpoints
// resolving; everything else is ignored.
func (d *Diagram) AnalyzeControls() models.ControlReport {
	tags := d.EquipmentTags()
	idOf := make(map[string]int64, len(tags))
	tagOf := make(map[int64]string, len(tags))
	for i, tag := range tags {
		idOf[tag] = int64(i)
		tagOf[int64(i)] = tag
	}

	g := simple.NewUndirectedGraph()
	for _, tag := range d.PipelineTags() {
		p := d.pipelines[tag]
		pc, ok := d.catalog.PipelineClass(p.Class)
		if !ok || pc.Kind != models.LineInstrument {
			continue
		}
		fromID, okF := idOf[p.From.Equipment]
		toID, okT := idOf[p.To.Equipment]
		if !okF || !okT || fromID == toID {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
	}

	var report models.ControlReport

	comps := topo.ConnectedComponents(g)
	network := make(map[string]int, len(tags))
	for ci, comp := range comps {
		members := make([]string, 0, len(comp))
		for _, n := range comp {
			members = append(members, tagOf[n.ID()])
		}
		sort.Strings(members)
		for _, m := range members {
			network[m] = ci
		}
		report.Networks = append(report.Networks, models.SignalNetwork{Members: members})
	}
	sort.Slice(report.Networks, func(i, j int) bool {
		return report.Networks[i].Members[0] < report.Networks[j].Members[0]
	})

	report.Loops = d.findLoops(network)
	report.Interlocks = d.findInterlocks(g, idOf, tagOf)
	return report
}

// findLoops pairs transmitters with controllers sharing variable and
// loop number inside one signal network, then attaches matching final
// elements from the same network.
func (d *Diagram) findLoops(network map[string]int) []models.ControlLoop {
	type member struct {
		tag  string
		inst models.InstrumentTag
		net  int
	}
	var transmitters, controllers, finals []member
	for _, tag := range d.EquipmentTags() {
		inst, ok := ParseInstrumentTag(tag)
		if !ok {
			continue
		}
		net, wired := network[tag]
		if !wired {
			continue
		}
		m := member{tag: tag, inst: inst, net: net}
		switch {
		case isTransmitter(inst):
			transmitters = append(transmitters, m)
		case isController(inst):
			controllers = append(controllers, m)
		case isFinalElement(inst):
			finals = append(finals, m)
		}
	}

	var loops []models.ControlLoop
	for _, tr := range transmitters {
		for _, ctl := range controllers {
			if ctl.net != tr.net || ctl.inst.Variable != tr.inst.Variable || ctl.inst.Number != tr.inst.Number {
				continue
			}
			loop := models.ControlLoop{
				ID:          fmt.Sprintf("%s-%d", tr.inst.Variable, tr.inst.Number),
				Kind:        loopKind(tr.inst.Variable),
				Transmitter: tr.tag,
				Controller:  ctl.tag,
			}
			for _, fe := range finals {
				if fe.net == tr.net && fe.inst.Variable == tr.inst.Variable && fe.inst.Number == tr.inst.Number {
					loop.FinalElements = append(loop.FinalElements, fe.tag)
				}
			}
			sort.Strings(loop.FinalElements)
			loop.Complete = len(loop.FinalElements) > 0
			loops = append(loops, loop)
		}
	}
	sort.Slice(loops, func(i, j int) bool { return loops[i].ID < loops[j].ID })
	return loops
}

// findInterlocks reports alarm or switch tags wired to shutdown valves.
// Unlike loops, an interlock requires a direct signal connection.
func (d *Diagram) findInterlocks(g *simple.UndirectedGraph, idOf map[string]int64, tagOf map[int64]string) []models.Interlock {
	var interlocks []models.Interlock
	for _, tag := range d.EquipmentTags() {
		prefix, _, _, ok := SplitTag(tag)
		if !ok || !isTripTrigger(prefix) {
			continue
		}
		id, wired := idOf[tag]
		if !wired || g.Node(id) == nil {
			continue
		}
		var targets []string
		it := g.From(id)
		for it.Next() {
			nTag := tagOf[it.Node().ID()]
			if nPrefix, _, _, ok := SplitTag(nTag); ok && isTripTarget(nPrefix) {
				targets = append(targets, nTag)
			}
		}
		sort.Strings(targets)
		for _, target := range targets {
			interlocks = append(interlocks, models.Interlock{Trigger: tag, Target: target})
		}
	}
	sort.Slice(interlocks, func(i, j int) bool {
		if interlocks[i].Trigger != interlocks[j].Trigger {
			return interlocks[i].Trigger < interlocks[j].Trigger
		}
		return interlocks[i].Target < interlocks[j].Target
	})
	return interlocks
}
