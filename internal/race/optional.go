package race

// Opt holds a value that may be absent.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some wraps a present value.
func Some[T any](value T) Opt[T] {
	return Opt[T]{Value: value, Valid: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}
