package normalize

// bridgeKey identifies a whole enumeration.
type bridgeKey struct {
	codes  string
	labels string
}

// Cache remembers the identifiers already assigned to enumerations, code
// sequences and label sequences. The three namespaces are independent, so an
// enumeration can reuse the code array of another one while minting a new
// label array. Entries are never evicted.
type Cache struct {
	bridges map[bridgeKey]string
	inputs  map[string]string
	outputs map[string]string
}

func NewCache() *Cache {
	return &Cache{
		bridges: map[bridgeKey]string{},
		inputs:  map[string]string{},
		outputs: map[string]string{},
	}
}

func (c *Cache) Bridge(k Key) (string, bool) {
	id, ok := c.bridges[bridgeKey{codes: k.codesKey(), labels: k.labelsKey()}]
	return id, ok
}

func (c *Cache) PutBridge(k Key, id string) {
	c.bridges[bridgeKey{codes: k.codesKey(), labels: k.labelsKey()}] = id
}

func (c *Cache) InputArray(k Key) (string, bool) {
	id, ok := c.inputs[k.codesKey()]
	return id, ok
}

func (c *Cache) PutInputArray(k Key, id string) {
	c.inputs[k.codesKey()] = id
}

func (c *Cache) OutputArray(k Key) (string, bool) {
	id, ok := c.outputs[k.labelsKey()]
	return id, ok
}

func (c *Cache) PutOutputArray(k Key, id string) {
	c.outputs[k.labelsKey()] = id
}

// Len returns the number of entries in each namespace.
func (c *Cache) Len() (bridges, inputs, outputs int) {
	return len(c.bridges), len(c.inputs), len(c.outputs)
}
