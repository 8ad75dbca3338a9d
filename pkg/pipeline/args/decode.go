package args

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

// As converts v to T. A scalar T accepts a single element list, a slice T accepts a scalar as a one element list.
// Integers widen to float64, no other conversion is performed.
func As[T any](v Value) (T, error) {
	var zero T

	out, err := decode(any(zero), v)
	if err != nil {
		return zero, err
	}

	return out.(T), nil //nolint:forcetypeassert // decode returns the type of its target
}

func decode(target any, v Value) (any, error) {
	switch target.(type) {
	case Value:
		return v, nil
	case []Value:
		return v.Values(), nil
	case bool, int, int64, float64, string, time.Time, *channel.Reader, *channel.Writer, *Store:
		single, err := v.single()
		if err != nil {
			return nil, err
		}

		return decodeScalar(target, single)
	case []bool:
		return decodeList[bool](v)
	case []int:
		return decodeList[int](v)
	case []int64:
		return decodeList[int64](v)
	case []float64:
		return decodeList[float64](v)
	case []string:
		return decodeList[string](v)
	case []time.Time:
		return decodeList[time.Time](v)
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%T", target)
}

func (v Value) single() (Value, error) {
	if v.kind != KindList {
		return v, nil
	}

	if len(v.list) != 1 {
		return Value{}, errors.Wrapf(ErrNotSingle, "got %d values", len(v.list))
	}

	return v.list[0], nil
}

func decodeList[E any](v Value) (any, error) {
	var zero E

	items := v.Values()
	out := make([]E, 0, len(items))

	for i, item := range items {
		elem, err := decodeScalar(any(zero), item)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out = append(out, elem.(E)) //nolint:forcetypeassert // decodeScalar returns the type of its target
	}

	return out, nil
}

func decodeScalar(target any, v Value) (any, error) {
	switch target.(type) {
	case bool:
		if v.kind == KindBool {
			return v.b, nil
		}
	case int:
		if v.kind == KindInt {
			if v.i < math.MinInt || v.i > math.MaxInt {
				return nil, errors.Wrapf(ErrTypeMismatch, "%d overflows int", v.i)
			}

			return int(v.i), nil
		}
	case int64:
		if v.kind == KindInt {
			return v.i, nil
		}
	case float64:
		switch v.kind {
		case KindFloat:
			return v.f, nil
		case KindInt:
			return float64(v.i), nil
		default:
		}
	case string:
		if v.kind == KindString {
			return v.s, nil
		}
	case time.Time:
		if v.kind == KindTime {
			return v.t, nil
		}
	case *channel.Reader:
		if v.kind == KindReader {
			if v.reader == nil {
				return nil, errors.Wrap(ErrNilEndpoint, "reader")
			}

			return v.reader, nil
		}
	case *channel.Writer:
		if v.kind == KindWriter {
			if v.writer == nil {
				return nil, errors.Wrap(ErrNilEndpoint, "writer")
			}

			return v.writer, nil
		}
	case *Store:
		if v.kind == KindStore {
			return v.store, nil
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "%T", target)
	}

	return nil, errors.Wrapf(ErrTypeMismatch, "cannot use %s as %T", v.kind, target)
}
