package args

import (
	"fmt"
	"time"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

// Kind is the tag of a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
	KindList
	KindReader
	KindWriter
	KindStore
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindTime:    "time",
	KindList:    "list",
	KindReader:  "reader",
	KindWriter:  "writer",
	KindStore:   "store",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is one resolved argument. The zero Value is invalid.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	t      time.Time
	list   []Value
	reader *channel.Reader
	writer *channel.Writer
	store  *Store
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Int(i int64) Value {
	return Value{kind: KindInt, i: i}
}

func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t}
}

func Reader(r *channel.Reader) Value {
	return Value{kind: KindReader, reader: r}
}

func Writer(w *channel.Writer) Value {
	return Value{kind: KindWriter, writer: w}
}

// Nested wraps a store so that it can be bound as a group of arguments.
func Nested(s *Store) Value {
	return Value{kind: KindStore, store: s}
}

// List builds an ordered list. The values are copied.
func List(values ...Value) Value {
	return Value{kind: KindList, list: append([]Value{}, values...)}
}

// Ints is a shorthand for a list of integers.
func Ints(values ...int64) Value {
	list := make([]Value, len(values))
	for i, v := range values {
		list[i] = Int(v)
	}

	return Value{kind: KindList, list: list}
}

// Strings is a shorthand for a list of strings.
func Strings(values ...string) Value {
	list := make([]Value, len(values))
	for i, v := range values {
		list[i] = String(v)
	}

	return Value{kind: KindList, list: list}
}

func (v Value) Kind() Kind {
	return v.kind
}

// Values returns the elements of a list, or the value itself as a single element list.
func (v Value) Values() []Value {
	if v.kind == KindList {
		return append([]Value{}, v.list...)
	}

	return []Value{v}
}

// Interface returns the plain Go value held by v.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindTime:
		return v.t
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}

		return out
	case KindReader:
		return v.reader
	case KindWriter:
		return v.writer
	case KindStore:
		return v.store
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindReader:
		if v.reader == nil {
			return "reader(<nil>)"
		}

		return "reader(" + v.reader.Channel().Name() + ")"
	case KindWriter:
		if v.writer == nil {
			return "writer(<nil>)"
		}

		return "writer(" + v.writer.Channel().Name() + ")"
	case KindStore:
		return fmt.Sprintf("store(%d)", v.store.Len())
	case KindTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v.Interface())
	}
}
