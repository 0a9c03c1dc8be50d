package notify

type fieldState uint8

const (
	stateUnset fieldState = iota
	stateClear
	stateSet
)

// Field is a single-field update: leave unchanged, reset to the zero value, or
// replace. The zero Field leaves the value unchanged.
type Field[T comparable] struct {
	state fieldState
	value T
}

// Unset returns a Field that keeps the existing value
func Unset[T comparable]() Field[T] {
	return Field[T]{}
}

// Clear returns a Field that resets the value to its zero value
func Clear[T comparable]() Field[T] {
	return Field[T]{state: stateClear}
}

// Set returns a Field that replaces the value
func Set[T comparable](v T) Field[T] {
	return Field[T]{state: stateSet, value: v}
}

// FromOptional maps supplied input to Set and absent input to Clear
func FromOptional[T comparable](v *T) Field[T] {
	if v == nil {
		return Clear[T]()
	}
	return Set(*v)
}

func (f Field[T]) IsUnset() bool { return f.state == stateUnset }
func (f Field[T]) IsClear() bool { return f.state == stateClear }
func (f Field[T]) IsSet() bool   { return f.state == stateSet }

// Value returns the value carried by a Set field
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == stateSet
}

// Apply returns the value after the update
func (f Field[T]) Apply(existing T) T {
	switch f.state {
	case stateClear:
		var zero T
		return zero
	case stateSet:
		return f.value
	default:
		return existing
	}
}

// Map transforms the value of a Set field
func (f Field[T]) Map(fn func(T) T) Field[T] {
	if f.state == stateSet {
		f.value = fn(f.value)
	}
	return f
}

func (f Field[T]) String() string {
	switch f.state {
	case stateClear:
		return "clear"
	case stateSet:
		return "set"
	default:
		return "unset"
	}
}
