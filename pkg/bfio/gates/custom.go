package gates

import (
	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/terminal"
)

// Handler answers a peer request on a Custom gate.
type Handler func(req []interface{}) ([]interface{}, error)

// Custom is an application specific gate (ID >= 20) declared by its value types.
type Custom struct {
	Foundation
	Name string
}

// NewCustom creates a Custom gate. Without handler, peer requests are
// reported as unsupported.
func NewCustom(id bfio.FunctionID, name string, request, answer []bfio.DataType, handler Handler) (*Custom, error) {
	if id < bfio.FirstApplicationID {
		return nil, bfio.Errorf(bfio.Failed, "gate.custom", "%d is a reserved ID", byte(id))
	}
	size, variable := planeSize(request)
	answerSize, answerVariable := planeSize(answer)
	if size < 0 || answerSize < 0 {
		return nil, bfio.Errorf(bfio.Incompatibility, "gate.custom", "unsupported type in %s signature", name)
	}
	if answerSize > size {
		size = answerSize
	}
	g := &Custom{Foundation: newFoundation(id, size, request, answer), Name: name}
	g.variable = variable || answerVariable
	if handler != nil {
		g.answer = handler
	}
	return g, nil
}

// Request sends a request with values matching the request types.
func (g *Custom) Request(vals ...interface{}) error {
	return g.RequestValues(vals...)
}

// Read returns answer values.
func (g *Custom) Read() ([]interface{}, error) {
	return g.ReadValues()
}

// planeSize returns the plane size for types, or -1 for an unsupported type.
// With strings, the size is the default arrival capacity until the gate is
// attached to a registry.
func planeSize(types []bfio.DataType) (int, bool) {
	size, variable := 2, false
	for _, t := range types {
		if t == bfio.String {
			variable = true
			continue
		}
		n, err := bfio.GetArraySize(t)
		if err != nil {
			return -1, false
		}
		size += 1 + n
	}
	if variable {
		return terminal.DefaultArrivalCapacity, true
	}
	return size, false
}
