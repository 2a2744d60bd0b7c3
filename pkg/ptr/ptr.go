// Package ptr provides a small pointer-of helper used when building
// request structs (e.g. Qdrant's) that want *T for optional fields.
// Grounded on the ptr.Pointer helper used by
// _examples/Tangerg-lynx/ai/providers/vectorstores/qdrant/store.go.
package ptr

// Pointer returns a pointer to a copy of v.
func Pointer[T any](v T) *T {
	return &v
}
