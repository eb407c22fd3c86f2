package protocol

import "fmt"

// TruncatedError is returned by a Decode function when the payload is
// shorter than the fixed-size prefix the service requires. A transport
// delivering a truncated payload is a malformed request, not something
// the caller can recover data from.
type TruncatedError struct {
	Service string
	Want    int
	Got     int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("protocol: %s payload too short: got %d bytes, need at least %d", e.Service, e.Got, e.Want)
}

// StringTooLongError is returned by an Encode function when a variable
// length field exceeds MaxStringLength and cannot be represented with the
// single length-prefix byte the wire format uses.
type StringTooLongError struct {
	Field string
	Len   int
}

func (e *StringTooLongError) Error() string {
	return fmt.Sprintf("protocol: %s is %d bytes, exceeds MaxStringLength (%d)", e.Field, e.Len, MaxStringLength)
}
