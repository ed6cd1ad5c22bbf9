package domain

import (
	"fmt"
	"strconv"
	"time"
)

// ValueType is the XSD data type of a Property value.
type ValueType string

const (
	ValueTypeString   ValueType = "xs:string"
	ValueTypeInt      ValueType = "xs:int"
	ValueTypeLong     ValueType = "xs:long"
	ValueTypeDouble   ValueType = "xs:double"
	ValueTypeBoolean  ValueType = "xs:boolean"
	ValueTypeDateTime ValueType = "xs:dateTime"
)

// ValueTypes lists the supported data types.
var ValueTypes = []ValueType{
	ValueTypeString, ValueTypeInt, ValueTypeLong, ValueTypeDouble, ValueTypeBoolean, ValueTypeDateTime,
}

// Accepts reports whether v is a valid value of this type. Nil is always accepted.
func (t ValueType) Accepts(v any) bool {
	if v == nil {
		return true
	}
	switch t {
	case ValueTypeString:
		_, ok := v.(string)
		return ok
	case ValueTypeInt:
		_, ok := v.(int)
		return ok
	case ValueTypeLong:
		switch v.(type) {
		case int64, int:
			return true
		}
		return false
	case ValueTypeDouble:
		_, ok := v.(float64)
		return ok
	case ValueTypeBoolean:
		_, ok := v.(bool)
		return ok
	case ValueTypeDateTime:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

// Parse converts a lexical value into the Go value of this type.
func (t ValueType) Parse(s string) (any, error) {
	switch t {
	case ValueTypeString:
		return s, nil
	case ValueTypeInt:
		return strconv.Atoi(s)
	case ValueTypeLong:
		return strconv.ParseInt(s, 10, 64)
	case ValueTypeDouble:
		return strconv.ParseFloat(s, 64)
	case ValueTypeBoolean:
		return strconv.ParseBool(s)
	case ValueTypeDateTime:
		return time.Parse(time.RFC3339, s)
	}
	return nil, fmt.Errorf("%w: unknown value type %q", ErrCoercion, t)
}

// Format renders v in the lexical space of the type.
func (t ValueType) Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// ValueTypeOf returns the data type matching the dynamic type of v.
func ValueTypeOf(v any) (ValueType, bool) {
	switch v.(type) {
	case string:
		return ValueTypeString, true
	case int:
		return ValueTypeInt, true
	case int64:
		return ValueTypeLong, true
	case float64:
		return ValueTypeDouble, true
	case bool:
		return ValueTypeBoolean, true
	case time.Time:
		return ValueTypeDateTime, true
	}
	return "", false
}
