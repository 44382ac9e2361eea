package attribute

import (
	"fmt"
	"math"
	"reflect"
)

// applyUpdate computes the value that results from applying the update type
// with the given operand. The inputs are not modified.
func applyUpdate(t UpdateType, value, operand any) (any, error) {
	switch t {
	case UpdateNone:
		return value, nil
	case UpdateSet:
		return operand, nil
	case UpdateSum:
		return sum(value, operand)
	case UpdatePush:
		return push(value, operand)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidRechargeType, int(t))
	}
}

// sum adds numbers, concatenates strings and concatenates slices.
func sum(value, operand any) (any, error) {
	if isAbsent(value) || isAbsent(operand) {
		return nil, fmt.Errorf("%w: cannot sum %v and %v",
			ErrRechargeNotApplicable, value, operand)
	}

	v := reflect.ValueOf(value)
	o := reflect.ValueOf(operand)

	switch {
	case v.CanInt(), v.CanUint(), v.CanFloat():
		return addNumbers(v, o)
	case v.Kind() == reflect.String && o.Kind() == reflect.String:
		res := reflect.New(v.Type()).Elem()
		res.SetString(v.String() + o.String())

		return res.Interface(), nil
	case v.Kind() == reflect.Slice:
		return concat(v, o)
	default:
		return nil, fmt.Errorf("%w: cannot sum %T and %T",
			ErrRechargeNotApplicable, value, operand)
	}
}

// addNumbers converts the operand to the type of the value before adding, so
// the attribute keeps its Go type. A fractional operand on an integer value
// widens the result to float64. An operand that does not fit in an integer
// value, such as a negative one on an unsigned value, is rejected.
func addNumbers(v, o reflect.Value) (any, error) {
	if !isNumber(o) {
		return nil, fmt.Errorf("%w: cannot add %s to %s",
			ErrRechargeNotApplicable, o.Type(), v.Type())
	}

	if !v.CanFloat() && o.CanFloat() && o.Float() != math.Trunc(o.Float()) {
		return floatOf(v) + o.Float(), nil
	}

	converted := o.Convert(v.Type())
	if !v.CanFloat() && converted.Convert(o.Type()).Interface() != o.Interface() {
		return nil, fmt.Errorf("%w: %v does not fit in %s",
			ErrRechargeNotApplicable, o.Interface(), v.Type())
	}

	res := reflect.New(v.Type()).Elem()

	switch {
	case v.CanInt():
		res.SetInt(v.Int() + converted.Int())
	case v.CanUint():
		res.SetUint(v.Uint() + converted.Uint())
	default:
		res.SetFloat(v.Float() + converted.Float())
	}

	return res.Interface(), nil
}

func isNumber(v reflect.Value) bool {
	return v.CanInt() || v.CanUint() || v.CanFloat()
}

func floatOf(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

// push appends the operand as a single element when it fits the element
// type, and element by element otherwise.
func push(value, operand any) (any, error) {
	if isAbsent(value) || reflect.TypeOf(value).Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: push requires a slice value, got %T",
			ErrRechargeNotApplicable, value)
	}

	v := reflect.ValueOf(value)
	if isAbsent(operand) {
		return nil, fmt.Errorf("%w: cannot push %v",
			ErrRechargeNotApplicable, operand)
	}

	o := reflect.ValueOf(operand)
	if o.Type().AssignableTo(v.Type().Elem()) {
		res := reflect.MakeSlice(v.Type(), 0, v.Len()+1)
		res = reflect.AppendSlice(res, v)
		res = reflect.Append(res, o)

		return res.Interface(), nil
	}

	return concat(v, o)
}

// concat returns a new slice holding the elements of v followed by those of
// o. The backing array of v is never shared with the result.
func concat(v, o reflect.Value) (any, error) {
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w: cannot extend %s",
			ErrRechargeNotApplicable, v.Type())
	}

	if o.Kind() != reflect.Slice && o.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: cannot append %s to %s",
			ErrRechargeNotApplicable, o.Type(), v.Type())
	}

	if !o.Type().Elem().AssignableTo(v.Type().Elem()) {
		return nil, fmt.Errorf("%w: cannot append %s to %s",
			ErrRechargeNotApplicable, o.Type(), v.Type())
	}

	res := reflect.MakeSlice(v.Type(), 0, v.Len()+o.Len())
	res = reflect.AppendSlice(res, v)

	for i := 0; i < o.Len(); i++ {
		res = reflect.Append(res, o.Index(i))
	}

	return res.Interface(), nil
}
