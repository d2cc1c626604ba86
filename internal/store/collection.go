package store

type collection[K ~string, V any] struct {
	items map[K]V
	order []K
}

func newCollection[K ~string, V any]() *collection[K, V] {
	return &collection[K, V]{
		items: map[K]V{},
	}
}

func (c *collection[K, V]) get(id K) (V, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[K, V]) put(id K, v V) {
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[K, V]) remove(id K) (V, bool) {
	v, ok := c.items[id]
	if !ok {
		return v, false
	}
	delete(c.items, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return v, true
}

// list returns the values in insertion order
func (c *collection[K, V]) list() []V {
	res := make([]V, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.items[id])
	}
	return res
}
