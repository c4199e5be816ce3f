package tree

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrEmpty is returned by Parse for blank input.
var ErrEmpty = errors.New("tree: empty document")

// Parse decodes a JSON document into a Value. jsonparser walks objects in
// document order, which is what keeps map entries ordered.
func Parse(data []byte) (*Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	return decode(raw, typ)
}

func decode(raw []byte, typ jsonparser.ValueType) (*Value, error) {
	switch typ {
	case jsonparser.Object:
		node := &Value{kind: KindMap}
		err := jsonparser.ObjectEach(raw, func(key, value []byte, dt jsonparser.ValueType, _ int) error {
			k := string(key)
			if bytes.IndexByte(key, '\\') >= 0 {
				unescaped, err := jsonparser.ParseString(key)
				if err != nil {
					return err
				}
				k = unescaped
			}
			child, err := decode(value, dt)
			if err != nil {
				return err
			}
			node.entries = append(node.entries, Entry{Key: k, Value: child})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("tree: object: %w", err)
		}
		return node, nil

	case jsonparser.Array:
		node := &Value{kind: KindSeq}
		var firstErr error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dt jsonparser.ValueType, _ int, cbErr error) {
			if firstErr != nil {
				return
			}
			if cbErr != nil {
				firstErr = cbErr
				return
			}
			child, err := decode(value, dt)
			if err != nil {
				firstErr = err
				return
			}
			node.items = append(node.items, child)
		})
		if err == nil {
			err = firstErr
		}
		if err != nil {
			return nil, fmt.Errorf("tree: array: %w", err)
		}
		return node, nil

	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, fmt.Errorf("tree: string: %w", err)
		}
		return NewScalar(s), nil

	case jsonparser.Number:
		f, err := jsonparser.ParseFloat(raw)
		if err != nil {
			return nil, fmt.Errorf("tree: number: %w", err)
		}
		return NewScalar(f), nil

	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, fmt.Errorf("tree: bool: %w", err)
		}
		return NewScalar(b), nil

	case jsonparser.Null:
		return NewScalar(nil), nil
	}
	return nil, fmt.Errorf("tree: unsupported value type %s", typ)
}
