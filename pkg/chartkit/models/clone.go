package models

import (
	"reflect"

	"github.com/tiendc/go-deepcopy"
)

// Clone returns a deep copy of the option.
func (o Option) Clone() (Option, error) {
	if o == nil {
		return nil, nil
	}
	var out Option
	if err := deepcopy.Copy(&out, o); err != nil {
		return nil, err
	}
	return out, nil
}

// CloneValue returns a deep copy of v, keeping its dynamic type.
func CloneValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	ptr := reflect.New(reflect.TypeOf(v))
	if err := deepcopy.Copy(ptr.Interface(), v); err != nil {
		return v, err
	}
	return ptr.Elem().Interface(), nil
}
