package schema

import "fmt"

// Catalog is an immutable collection of template definitions keyed by id.
// It is built once at startup and safely shared by all documents.
type Catalog struct {
	byID  map[string]*Template
	order []string
}

// NewCatalog builds a catalog from loaded templates.
func NewCatalog(tpls []*Template) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[string]*Template, len(tpls)),
		order: make([]string, 0, len(tpls)),
	}
	for _, tpl := range tpls {
		if _, dup := c.byID[tpl.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		c.byID[tpl.ID] = tpl
		c.order = append(c.order, tpl.ID)
	}
	return c, nil
}

// Template returns the template with the given id.
func (c *Catalog) Template(id string) (*Template, bool) {
	tpl, ok := c.byID[id]
	return tpl, ok
}

// Templates returns all templates in load order.
func (c *Catalog) Templates() []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// ByElement returns the templates belonging to one competency element.
func (c *Catalog) ByElement(element string) []*Template {
	var out []*Template
	for _, id := range c.order {
		if tpl := c.byID[id]; tpl.Element == element {
			out = append(out, tpl)
		}
	}
	return out
}

// Len reports the number of templates.
func (c *Catalog) Len() int { return len(c.order) }
