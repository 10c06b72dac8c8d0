package mailfred

import (
	"errors"
	"fmt"
	"reflect"
)

// Cancel is a handler return value meaning "don't reply, but still
// acknowledge (and delete) the request". Distinct from Empty, which does
// reply, just with an empty body.
type Cancel struct{}

// Empty is a handler return value meaning "reply, with an empty body".
type Empty struct{}

// HTML wraps a string so it converts to a text/html part instead of the
// default text/plain.
type HTML string

// AttachmentPart is a handler return value for a single named binary part.
// Named to avoid colliding with the Attachment Kind constant.
type AttachmentPart struct {
	Name    string
	Content []byte
}

// TwoParts concatenates the body conversion of First followed by Second.
// Handlers that need more than two parts return a ResponseBody ([]Part)
// directly instead.
type TwoParts struct {
	First  any
	Second any
}

// Rejected marks a value as a User-facing rejection: Payload is reported to
// the sender as the cause of a User error instead of being sent as a body.
// Grounds the original crate's bare Error(x) return shape, where returning
// an error value directly (rather than through a Result) still counts as
// a request-level rejection.
type Rejected struct {
	Payload any
}

// UserErrorFrom wraps err so ToResponseResult classifies it as a User error
// instead of the default System error. Handlers call this on validation
// failures, unknown commands, and other caller-caused problems whose cause
// should be reported back to the sender.
func UserErrorFrom(err error) error {
	if err == nil {
		return nil
	}
	return &userError{err: err}
}

// ToResponseResult converts a handler's (value, err) return into a
// ResponseResult. It stands in for the original crate's Into<Response>
// trait impls, which Go has no equivalent for: instead of one conversion
// per concrete return type resolved at compile time, this does the
// equivalent dispatch at runtime with a type switch.
func ToResponseResult(value any, err error) ResponseResult {
	if err != nil {
		var ue *userError
		if errors.As(err, &ue) {
			return UserErr(ue.err)
		}
		var er *ErrorResponse
		if errors.As(err, &er) {
			return ResponseResult{Err: er}
		}
		return SysErr(err)
	}

	switch v := value.(type) {
	case nil:
		return NoReply()
	case Cancel:
		return NoReply()
	case Rejected:
		return UserErr(fmt.Errorf("%v", v.Payload))
	case Response:
		return Ok(v)
	case ResponseResult:
		return v
	}

	// A nil pointer stands in for Option<T>::None: no reply at all, same
	// as bare nil/Cancel — distinct from Empty, which does reply with an
	// empty body. A non-nil pointer falls through to ToResponseBody, which
	// recurses on the pointed-to value.
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return NoReply()
	}

	return Ok(Response{Body: ToResponseBody(value)})
}

// ToResponseBody converts a single handler-returned value into a
// ResponseBody. It recognizes the shapes handlers commonly return — plain
// text, HTML, a single attachment, a pair of parts, a pre-built body, or a
// nil-able pointer standing in for Rust's Option<T> — and falls back to
// rendering anything else with fmt.Sprintf so a handler can always return
// something printable without reaching for these wrapper types.
func ToResponseBody(v any) ResponseBody {
	if v == nil {
		return nil
	}

	switch b := v.(type) {
	case Empty:
		return nil
	case Cancel:
		return nil
	case ResponseBody:
		return b
	case []Part:
		return ResponseBody(b)
	case Part:
		return ResponseBody{b}
	case string:
		return ResponseBody{{Kind: Text, Content: []byte(b)}}
	case HTML:
		return ResponseBody{{Kind: Html, Content: []byte(b)}}
	case []byte:
		return ResponseBody{{Kind: Text, Content: b}}
	case AttachmentPart:
		return ResponseBody{{Kind: Attachment, Name: b.Name, Content: b.Content}}
	case TwoParts:
		out := ToResponseBody(b.First)
		out = append(out, ToResponseBody(b.Second)...)
		return out
	}

	// A pointer here stands in for Option<T>: nil means None (no body),
	// non-nil recurses on the pointed-to value, same as the original
	// crate's Option<T> Into<Response> impl.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return ToResponseBody(rv.Elem().Interface())
	}

	return ResponseBody{{Kind: Text, Content: []byte(fmt.Sprintf("%v", v))}}
}
