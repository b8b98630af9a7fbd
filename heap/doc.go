// Package heap installs an arena as the process-wide dynamic-memory backend
// and applies the out-of-memory policy.
//
// The arena package reports exhaustion as an error value. This package is the
// policy layer on top: Alloc treats exhaustion as fatal and hands it to an
// OOMHandler that never returns (PanicOnOOM by default, HaltOnOOM to park
// forever like firmware spinning in an idle loop). TryAlloc keeps the error
// for callers that want to pick a fallback themselves.
//
// Install binds the process-wide heap exactly once, before the first
// container is built:
//
//	b, _ := arena.NewBump(region, arena.WithBacking(mem))
//	if _, err := heap.Install(b, heap.WithOOMHandler(heap.HaltOnOOM)); err != nil {
//	    return err
//	}
//	v := heap.NewVec[uint32](heap.Default())
//	v.Push(1)
//
// Containers in this package (Vec, Buffer) route every grow through the
// heap. Element types are restricted to scalars: arena memory is invisible
// to the Go garbage collector, so it must never hold Go pointers.
package heap
