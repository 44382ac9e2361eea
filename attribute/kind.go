package attribute

import "reflect"

// Kind is the coarse category of an attribute value. An attribute keeps the
// kind of its first value for its whole lifetime, while the concrete Go type
// may vary within the kind (an int attribute may be set to an int64).
type Kind int

// The value kinds an attribute can hold.
const (
	// KindInvalid is the kind of an absent value (nil, or a typed nil).
	KindInvalid Kind = iota
	KindBool
	KindNumber
	KindText
	KindSequence
	KindRecord
	KindFunc
	KindOther
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindBool:     "bool",
	KindNumber:   "number",
	KindText:     "text",
	KindSequence: "sequence",
	KindRecord:   "record",
	KindFunc:     "func",
	KindOther:    "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// KindOf returns the kind of v. Pointers take the kind of what they point
// to. Absent values are KindInvalid.
func KindOf(v any) Kind {
	if isAbsent(v) {
		return KindInvalid
	}

	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindText
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Struct, reflect.Map:
		return KindRecord
	case reflect.Func:
		return KindFunc
	default:
		return KindOther
	}
}

// isAbsent reports whether v is nil or a typed nil.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
