package object

import (
	"math"
	"strconv"
	"strings"
)

// Dict is an insertion-ordered mapping with hashable keys.
type Dict struct {
	keys  []Object
	vals  []Object
	index map[interface{}]int
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[interface{}]int)}
}

func (*Dict) Class() *Class { return DictClass }

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Set inserts or replaces key.
func (d *Dict) Set(key, val Object) error {
	h, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[h]; ok {
		d.vals[i] = val
		return nil
	}
	d.index[h] = len(d.keys)
	d.keys = append(d.keys, key)
	d.vals = append(d.vals, val)
	return nil
}

// Get looks up key.
func (d *Dict) Get(key Object) (Object, bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[h]
	if !ok {
		return nil, false, nil
	}
	return d.vals[i], true, nil
}

// Keys returns a snapshot of the keys in insertion order.
func (d *Dict) Keys() []Object { return append([]Object(nil), d.keys...) }

// Values returns a snapshot of the values in insertion order.
func (d *Dict) Values() []Object { return append([]Object(nil), d.vals...) }

type (
	strKey   string
	bytesKey string
	floatKey uint64
	tupleKey string
)

// hashKey maps a runtime value to a Go map key. Numbers that compare equal
// hash equal, as the runtime's == does.
func hashKey(o Object) (interface{}, error) {
	switch v := o.(type) {
	case Int:
		return int64(v), nil
	case Bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case Float:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return int64(f), nil
		}
		return floatKey(math.Float64bits(f)), nil
	case Str:
		return strKey(v), nil
	case Bytes:
		return bytesKey(v), nil
	case NoneType, EllipsisType:
		return v, nil
	case *Tuple:
		var b strings.Builder
		for _, item := range v.Items {
			k, err := hashKey(item)
			if err != nil {
				return nil, err
			}
			seg := keyString(k)
			b.WriteString(strconv.Itoa(len(seg)))
			b.WriteByte(':')
			b.WriteString(seg)
		}
		return tupleKey(b.String()), nil
	case *List, *Dict, *ByteArray:
		return nil, raise(ErrType, "unhashable type: '%s'", TypeName(o))
	default:
		// Everything else hashes by identity.
		return o, nil
	}
}

func keyString(k interface{}) string {
	switch v := k.(type) {
	case int64:
		return "i" + Int(v).repr()
	case floatKey:
		return "f" + Float(math.Float64frombits(uint64(v))).repr()
	case strKey:
		return "s" + string(v)
	case bytesKey:
		return "b" + string(v)
	case tupleKey:
		return "t(" + string(v) + ")"
	case NoneType:
		return "None"
	case EllipsisType:
		return "Ellipsis"
	default:
		return "p" + identityString(v)
	}
}
