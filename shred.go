package parquets

import (
	"fmt"
	"reflect"
)

// WriteRow shreds the record into the buffer's column streams and
// increments the row count by one.
//
// The method walks every leaf column of the schema; columns the record does
// not reach still receive a placeholder position, so that every column
// holds exactly one repetition level of zero per row. Fields of the record
// not declared in the schema are ignored.
//
// The returned error wraps ErrSchemaMismatch when the record does not have
// the shape the schema declares: a missing required field, a scalar where a
// repeated field is declared, or a value of the wrong Go type. After such
// an error the buffer refuses further writes.
func (b *Buffer) WriteRow(row Record) error {
	if b.err != nil {
		return b.err
	}
	if row == nil {
		return fmt.Errorf("cannot shred a nil record: %w", ErrSchemaMismatch)
	}

	for _, col := range b.schema.root.children {
		if err := b.shred(col, row[col.name], 0, 0); err != nil {
			// The streams of a partially shredded record are misaligned, so
			// the buffer cannot accept any further rows.
			b.err = err
			return err
		}
	}

	b.numRows++
	return nil
}

// shred emits the contribution of value to the sub-tree rooted at col.
//
// repetitionLevel is the level inherited from the enclosing context: zero
// at the record root, and the repetition level maximum of the deepest
// repeated ancestor being iterated otherwise. definitionLevel counts the
// optional and repeated ancestors of col which are present in the record.
func (b *Buffer) shred(col *Column, value interface{}, repetitionLevel, definitionLevel int32) error {
	switch {
	case col.Repeated():
		if value == nil {
			b.shredAbsent(col, repetitionLevel, definitionLevel)
			return nil
		}
		elems, err := listOf(col, value)
		if err != nil {
			return err
		}
		if len(elems) == 0 {
			b.shredAbsent(col, repetitionLevel, definitionLevel)
			return nil
		}
		for i, elem := range elems {
			r := repetitionLevel
			if i > 0 {
				r = col.maxRepetitionLevel
			}
			if err := b.shredPresent(col, elem, r, definitionLevel+1); err != nil {
				return err
			}
		}
		return nil

	case col.Optional():
		if value == nil {
			b.shredAbsent(col, repetitionLevel, definitionLevel)
			return nil
		}
		return b.shredPresent(col, value, repetitionLevel, definitionLevel+1)

	default:
		if value == nil {
			return fmt.Errorf("missing required field %q: %w", col.pathString(), ErrSchemaMismatch)
		}
		return b.shredPresent(col, value, repetitionLevel, definitionLevel)
	}
}

func (b *Buffer) shredPresent(col *Column, value interface{}, repetitionLevel, definitionLevel int32) error {
	if col.Leaf() {
		v, err := col.makeValue(value)
		if err != nil {
			return err
		}
		b.columns[col.index].writeValue(v, definitionLevel, repetitionLevel)
		return nil
	}

	group, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("field %q expects a group but received a value of type %T: %w", col.pathString(), value, ErrSchemaMismatch)
	}
	for _, child := range col.children {
		if err := b.shred(child, group[child.name], repetitionLevel, definitionLevel); err != nil {
			return err
		}
	}
	return nil
}

// shredAbsent emits one placeholder position in every leaf below col, at
// the definition level of the deepest ancestor that was present.
func (b *Buffer) shredAbsent(col *Column, repetitionLevel, definitionLevel int32) {
	if col.Leaf() {
		b.columns[col.index].writeNull(definitionLevel, repetitionLevel)
		return
	}
	for _, child := range col.children {
		b.shredAbsent(child, repetitionLevel, definitionLevel)
	}
}

// listOf converts the value of a repeated field to a slice of elements.
// Byte slices are always scalars; every other slice type is a list. A
// non-slice value is rejected rather than coerced to a one-element list.
func listOf(col *Column, value interface{}) ([]interface{}, error) {
	if elems, ok := value.([]interface{}); ok {
		return elems, nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
		elems := make([]interface{}, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return elems, nil
	}

	return nil, fmt.Errorf("field %q is repeated but received a value of type %T: %w", col.pathString(), value, ErrSchemaMismatch)
}
