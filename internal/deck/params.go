package deck

import "strconv"

// Params is the deck parameter table. Names keep first-seen order; assigning
// an existing name overwrites its value, so later statements win.
type Params struct {
	order []string
	vals  map[string]string
}

// NewParams returns an empty parameter table.
func NewParams() *Params {
	return &Params{vals: make(map[string]string)}
}

// Set stores the raw value text of a parameter.
func (p *Params) Set(name, value string) {
	if _, seen := p.vals[name]; !seen {
		p.order = append(p.order, name)
	}
	p.vals[name] = value
}

// Len returns the number of distinct parameters.
func (p *Params) Len() int { return len(p.order) }

// Names returns the parameter names in first-seen order.
func (p *Params) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Raw returns the stored value text.
func (p *Params) Raw(name string) (string, bool) {
	v, ok := p.vals[name]
	return v, ok
}

// Int returns the parameter parsed as an integer.
func (p *Params) Int(name string) (int64, bool) {
	v, ok := p.vals[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Real returns the parameter parsed as a real number.
func (p *Params) Real(name string) (float64, bool) {
	v, ok := p.vals[name]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
