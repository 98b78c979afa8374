package bsn

import (
	"fmt"
	"reflect"
)

// Patch is a deferred mutation of one property bag. Bags are always passed
// as pointers (the value returned by LiveGraph.Bag).
type Patch interface {
	// BagType is the bag type the patch expects, or nil when the patch
	// inspects the bag at apply time.
	BagType() reflect.Type
	// Apply mutates bag. A bag of the wrong type yields ErrTypeMismatch.
	Apply(bag any) error
}

// ApplyPatches runs each patch against bag in list order, so later patches
// win on overlapping fields. It stops at the first error.
func ApplyPatches(patches []Patch, bag any) error {
	for _, p := range patches {
		if err := p.Apply(bag); err != nil {
			return err
		}
	}
	return nil
}

// --- Typed patch ---

type setPatch[T any] struct {
	fn func(*T)
}

// Set returns a patch that calls fn with the node's *T bag.
func Set[T any](fn func(*T)) Patch {
	if fn == nil {
		panic("bsn: Set with nil func")
	}
	return setPatch[T]{fn: fn}
}

func (p setPatch[T]) BagType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (p setPatch[T]) Apply(bag any) error {
	v, ok := bag.(*T)
	if !ok {
		return mismatch(reflect.TypeFor[T](), bag)
	}
	p.fn(v)
	return nil
}

// --- Type-erased invoker ---

type funcPatch struct {
	typ reflect.Type
	fn  func(any) error
}

// Func returns a patch that invokes fn with a bag known to be a pointer to
// t. The check happens at apply time, which lets callers keep their own
// type-keyed tables of invokers.
func Func(t reflect.Type, fn func(bag any) error) Patch {
	if t == nil || fn == nil {
		panic("bsn: Func with nil type or func")
	}
	return funcPatch{typ: t, fn: fn}
}

func (p funcPatch) BagType() reflect.Type {
	return p.typ
}

func (p funcPatch) Apply(bag any) error {
	if reflect.TypeOf(bag) != reflect.PointerTo(p.typ) {
		return mismatch(p.typ, bag)
	}
	return p.fn(bag)
}

// --- Reflected field patch ---

type fieldPatch struct {
	field string
	value any
}

// SetField returns a patch that assigns value to the exported struct field
// named field, for bags whose concrete type is unknown at compile time.
// Numeric values are converted to the field type only when the conversion
// is exact: 3.7 into an int field or 300 into a uint8 field fails with
// ErrTypeMismatch. Float fields accept any in-range number, rounding to the
// nearest representable value. A nil value clears the field.
func SetField(field string, value any) Patch {
	return fieldPatch{field: field, value: value}
}

func (p fieldPatch) BagType() reflect.Type {
	return nil
}

func (p fieldPatch) Apply(bag any) error {
	rv := reflect.ValueOf(bag)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: field %q on non-struct bag %T", ErrTypeMismatch, p.field, bag)
	}
	sf, ok := rv.Elem().Type().FieldByName(p.field)
	if !ok || !sf.IsExported() {
		return fmt.Errorf("%w: %T has no exported field %q", ErrTypeMismatch, bag, p.field)
	}
	// Promoted fields of a nil embedded pointer are unreachable.
	dst, err := rv.Elem().FieldByIndexErr(sf.Index)
	if err != nil {
		return fmt.Errorf("%w: %T.%s: %v", ErrTypeMismatch, bag, p.field, err)
	}
	if !dst.CanSet() {
		return fmt.Errorf("%w: %T.%s is not settable", ErrTypeMismatch, bag, p.field)
	}

	src := reflect.ValueOf(p.value)
	if !src.IsValid() {
		dst.SetZero()
		return nil
	}
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}
	v, ok := convertExact(src, dst.Type())
	if !ok {
		return fmt.Errorf("%w: cannot set %T.%s (%s) to %T(%v)", ErrTypeMismatch, bag, p.field, dst.Type(), p.value, p.value)
	}
	dst.Set(v)
	return nil
}

// convertExact converts src to t. Only numeric-to-numeric and
// string-to-string conversions are allowed, so an int never turns into a
// one-rune string. Integer results must round-trip to src with the same
// sign; float results must not overflow.
func convertExact(src reflect.Value, t reflect.Type) (reflect.Value, bool) {
	sk, dk := src.Kind(), t.Kind()
	if !src.Type().ConvertibleTo(t) {
		return reflect.Value{}, false
	}
	switch {
	case sk == reflect.String && dk == reflect.String:
		return src.Convert(t), true
	case !isNumeric(sk) || !isNumeric(dk):
		return reflect.Value{}, false
	}

	out := src.Convert(t)
	if isFloat(dk) {
		if isFloat(sk) && out.OverflowFloat(src.Float()) {
			return reflect.Value{}, false
		}
		return out, true
	}
	if negative(src) != negative(out) || !out.Convert(src.Type()).Equal(src) {
		return reflect.Value{}, false
	}
	return out, true
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func negative(v reflect.Value) bool {
	switch {
	case v.CanInt():
		return v.Int() < 0
	case v.CanFloat():
		return v.Float() < 0
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func mismatch(want reflect.Type, bag any) error {
	return fmt.Errorf("%w: patch for *%s applied to %T", ErrTypeMismatch, want, bag)
}
