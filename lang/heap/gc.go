package heap

import (
	"github.com/mna/ember/lang/bytecode"
	"github.com/mna/ember/lang/value"
)

// Mark adds o to the mark set and pushes it onto the gray worklist for
// later tracing, unless it is already marked or nil. Roots call this for
// every value.Value and value.Obj they hold live; Value itself exposes no
// Mark method since KindNil/KindBool/KindNumber never need one.
func (h *Heap) Mark(o value.Obj) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	h.grayStack = append(h.grayStack, o)
}

// MarkValue marks v's object payload, if it has one.
func (h *Heap) MarkValue(v value.Value) {
	if v.IsObject() {
		h.Mark(v.AsObject())
	}
}

// Collect runs one full mark-and-sweep cycle: mark roots, trace the gray
// worklist to grey-then-black every reachable object, clean the
// string-interning table of strings about to be freed, sweep the unmarked
// remainder, and grow the next-collection threshold from what survived.
func (h *Heap) Collect() {
	h.log.Debug("gc: begin, bytesAllocated=", h.bytesAllocated)

	// Globals belong to the heap itself, not to any external RootMarker: a
	// global is reachable for as long as the program runs, regardless of
	// whether anything on the VM's stack currently references it.
	h.Globals.Iter(func(_ string, v value.Value) bool {
		h.MarkValue(v)
		return false
	})
	for _, r := range h.roots {
		r.MarkRoots(h)
	}
	h.trace()
	// sweepStrings must run before sweep clears survivors' mark bits, since it
	// reads Marked to decide which interned entries are about to be freed.
	h.sweepStrings()
	freed := h.sweep()

	h.bytesAllocated -= freed
	h.nextGC = int64(float64(h.bytesAllocated) * h.growthFactor)
	if h.nextGC <= 0 {
		h.nextGC = 1 << 16
	}

	h.log.Debug("gc: end, freed=", freed, " bytesAllocated=", h.bytesAllocated, " nextGC=", h.nextGC)
}

// trace drains the gray worklist, visiting each object's own references and
// marking them, until nothing gray remains (every reachable object has
// turned black).
func (h *Heap) trace() {
	for len(h.grayStack) > 0 {
		n := len(h.grayStack) - 1
		o := h.grayStack[n]
		h.grayStack = h.grayStack[:n]
		h.blacken(o)
	}
}

// blacken marks every object o directly references. Strings carry no
// outgoing references; the rest mirror the fields listed in lang/value's
// object kinds.
func (h *Heap) blacken(o value.Obj) {
	switch obj := o.(type) {
	case *value.Closure:
		if fn, ok := obj.Proto.(value.Obj); ok {
			h.Mark(fn)
		}
		for _, uv := range obj.Upvalues {
			if uv != nil {
				h.Mark(uv)
			}
		}
	case *value.Upvalue:
		h.MarkValue(*obj.Location)
		h.MarkValue(obj.Closed)
	case *value.Class:
		obj.Methods.Iter(func(_ string, m *value.Closure) bool {
			h.Mark(m)
			return false
		})
	case *value.Instance:
		h.Mark(obj.Class)
		obj.Fields.Iter(func(_ string, v value.Value) bool {
			h.MarkValue(v)
			return false
		})
	case *value.BoundMethod:
		h.MarkValue(obj.Receiver)
		h.Mark(obj.Method)
	case *bytecode.Function:
		// A closure's Proto blackens here, keeping every nested function
		// literal and string constant in its chunk reachable for as long as
		// some closure still points at this prototype.
		for _, c := range obj.Chunk.Constants {
			h.MarkValue(c)
		}
	}
}

// sweep walks the intrusive object list, freeing every object that was not
// marked during this cycle and clearing the mark bit on survivors for the
// next cycle. It returns an estimate of the bytes freed.
func (h *Heap) sweep() int64 {
	var freed int64
	var prev value.Obj
	cur := h.objects
	for cur != nil {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			freed += objOverhead
			if s, ok := cur.(*value.String); ok {
				freed += int64(len(s.Chars))
			}
			if prev == nil {
				h.objects = next
			} else {
				prev.SetNext(next)
			}
		}
		cur = next
	}
	return freed
}

// sweepStrings removes interning-table entries for strings that did not
// survive the sweep. Skipping this step would resurrect doomed strings:
// the next NewString call for the same content would hand back a pointer
// to an object sweep just unlinked from the heap.
func (h *Heap) sweepStrings() {
	var dead []string
	h.strings.Iter(func(k string, s *value.String) bool {
		if s.Marked() {
			return false
		}
		dead = append(dead, k)
		return false
	})
	for _, k := range dead {
		h.strings.Delete(k)
	}
}
