package dao

// Parameter is a named List filter, matched by the concrete store.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter builds a filter; a single value is stored scalar, several as
// a slice matched with OR semantics.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
