package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Client chose a competitor", want: "Client chose a competitor"},
		{name: "tags", in: "<b>Budget</b> too low<script>alert(1)</script>", want: "Budget too lowalert(1)"},
		{name: "encoded tags", in: "&lt;img src=x onerror=alert(1)&gt;ok", want: "ok"},
		{name: "whitespace", in: "  too   far\t away \n  next   year ", want: "too far away\nnext year"},
		{name: "blank", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextPtrNil(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil")
	}
}
