package mailfred

import "testing"

func TestPartEqual(t *testing.T) {
	t.Parallel()

	a := Part{Kind: Text, Content: []byte("hi")}
	b := Part{Kind: Text, Content: []byte("hi")}
	c := Part{Kind: Html, Content: []byte("hi")}

	if !a.Equal(b) {
		t.Errorf("expected equal parts")
	}
	if a.Equal(c) {
		t.Errorf("expected parts of different kind to differ")
	}
}

func TestMessageEqual(t *testing.T) {
	t.Parallel()

	m1 := Message{Address: "a@example.com", Header: "hi", Body: []Part{{Kind: Text, Content: []byte("x")}}}
	m2 := Message{Address: "a@example.com", Header: "hi", Body: []Part{{Kind: Text, Content: []byte("x")}}}
	m3 := Message{Address: "b@example.com", Header: "hi", Body: []Part{{Kind: Text, Content: []byte("x")}}}

	if !m1.Equal(m2) {
		t.Errorf("expected equal messages")
	}
	if m1.Equal(m3) {
		t.Errorf("expected messages with different address to differ")
	}
}

func TestKindString(t *testing.T) {
	t.Parallel()

	cases := map[Kind]string{Text: "text", Html: "html", Attachment: "attachment", Kind(99): "unknown"}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
