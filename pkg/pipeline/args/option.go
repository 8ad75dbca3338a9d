package args

// Option holds a value which may be absent.
type Option[T any] struct {
	value   T
	present bool
}

func Some[T any](value T) Option[T] {
	return Option[T]{value: value, present: true}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.present
}

func (o Option[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the held value, or def when the option is empty.
func (o Option[T]) OrElse(def T) T {
	if o.present {
		return o.value
	}

	return def
}
