package mailfred

import (
	"errors"
	"testing"
)

func TestToResponseResult_Cancel(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(Cancel{}, nil)
	if !r.Cancelled {
		t.Errorf("expected Cancel to produce a cancelled result")
	}
}

func TestToResponseResult_PlainString(t *testing.T) {
	t.Parallel()

	r := ToResponseResult("hello", nil)
	if r.IsErr() || r.Cancelled {
		t.Fatalf("expected ok result, got %+v", r)
	}
	if len(r.Value.Body) != 1 || r.Value.Body[0].Kind != Text || string(r.Value.Body[0].Content) != "hello" {
		t.Errorf("unexpected body: %+v", r.Value.Body)
	}
}

func TestToResponseResult_HTML(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(HTML("<b>hi</b>"), nil)
	if r.IsErr() {
		t.Fatalf("unexpected error result: %+v", r)
	}
	if len(r.Value.Body) != 1 || r.Value.Body[0].Kind != Html {
		t.Errorf("unexpected body: %+v", r.Value.Body)
	}
}

func TestToResponseResult_Attachment(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(AttachmentPart{Name: "a.txt", Content: []byte("data")}, nil)
	if r.IsErr() {
		t.Fatalf("unexpected error result: %+v", r)
	}
	if len(r.Value.Body) != 1 || r.Value.Body[0].Kind != Attachment || r.Value.Body[0].Name != "a.txt" {
		t.Errorf("unexpected body: %+v", r.Value.Body)
	}
}

func TestToResponseResult_OptionPointer(t *testing.T) {
	t.Parallel()

	var nilPtr *string
	r := ToResponseResult(nilPtr, nil)
	if r.IsErr() {
		t.Fatalf("unexpected error: %+v", r)
	}
	if !r.Cancelled {
		t.Errorf("expected a nil pointer (None) to produce no reply at all, got %+v", r)
	}

	s := "present"
	r = ToResponseResult(&s, nil)
	if r.Cancelled {
		t.Fatalf("expected a non-nil pointer (Some) to reply, got %+v", r)
	}
	if len(r.Value.Body) != 1 || string(r.Value.Body[0].Content) != "present" {
		t.Errorf("expected non-nil pointer to recurse into its value, got %+v", r.Value.Body)
	}
}

func TestToResponseResult_BareNilIsNoReply(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(nil, nil)
	if !r.Cancelled {
		t.Errorf("expected bare nil (unit) to produce no reply, got %+v", r)
	}
}

func TestToResponseResult_TwoParts(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(TwoParts{First: "a", Second: HTML("b")}, nil)
	if len(r.Value.Body) != 2 {
		t.Fatalf("expected two parts, got %+v", r.Value.Body)
	}
	if r.Value.Body[0].Kind != Text || r.Value.Body[1].Kind != Html {
		t.Errorf("unexpected kinds: %+v", r.Value.Body)
	}
}

func TestToResponseResult_Rejected(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(Rejected{Payload: "bad input"}, nil)
	if !r.IsErr() || r.Err.Kind != UserError {
		t.Fatalf("expected a user error, got %+v", r)
	}
}

func TestToResponseResult_UserErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad request")
	r := ToResponseResult(nil, UserErrorFrom(cause))
	if !r.IsErr() || r.Err.Kind != UserError {
		t.Fatalf("expected a user error, got %+v", r)
	}
	if !errors.Is(r.Err, cause) {
		t.Errorf("expected error chain to include the cause")
	}
}

func TestToResponseResult_PlainErrorIsSystem(t *testing.T) {
	t.Parallel()

	r := ToResponseResult(nil, errors.New("boom"))
	if !r.IsErr() || r.Err.Kind != SystemError {
		t.Fatalf("expected a system error, got %+v", r)
	}
}
