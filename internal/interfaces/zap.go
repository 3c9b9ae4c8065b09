package interfaces

// ZapDirectory is a key-value micro-ZAP directory backed by a single
// decoded block.
type ZapDirectory interface {
	// Find returns the 64-bit value stored under name, or ErrNotFound.
	Find(name string) (uint64, error)

	// Names returns every valid entry name in on-disk order.
	Names() []string
}
