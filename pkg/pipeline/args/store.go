package args

import (
	"sort"

	"github.com/askiada/go-stage/pkg/pipeline/channel"
)

// Store is an immutable name to Value map. It is safe for concurrent reads.
type Store struct {
	values map[string]Value
}

// NewStore copies values into a new store.
func NewStore(values map[string]Value) *Store {
	store := &Store{values: make(map[string]Value, len(values))}
	for name, value := range values {
		store.values[name] = value
	}

	return store
}

func (s *Store) Lookup(name string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	v, ok := s.values[name]

	return v, ok
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}

	return len(s.values)
}

// Names returns the argument names in lexical order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Readers returns every reader endpoint in the store, nested lists and stores included.
func (s *Store) Readers() []*channel.Reader {
	var readers []*channel.Reader
	s.walk(func(v Value) {
		if v.kind == KindReader && v.reader != nil {
			readers = append(readers, v.reader)
		}
	})

	return readers
}

// Writers returns every writer endpoint in the store, nested lists and stores included.
func (s *Store) Writers() []*channel.Writer {
	var writers []*channel.Writer
	s.walk(func(v Value) {
		if v.kind == KindWriter && v.writer != nil {
			writers = append(writers, v.writer)
		}
	})

	return writers
}

func (s *Store) walk(fn func(v Value)) {
	for _, name := range s.Names() {
		walkValue(s.values[name], fn)
	}
}

func walkValue(v Value, fn func(v Value)) {
	switch v.kind {
	case KindList:
		for _, item := range v.list {
			walkValue(item, fn)
		}
	case KindStore:
		v.store.walk(fn)
	default:
		fn(v)
	}
}
