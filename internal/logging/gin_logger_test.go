package logging

import "testing"

func TestMaskSensitiveQuery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty query",
			raw:  "",
			want: "",
		},
		{
			name: "benign params untouched",
			raw:  "page=2&sort=asc",
			want: "page=2&sort=asc",
		},
		{
			name: "code and state masked",
			raw:  "code=AQDx7hV9abcdefgh&state=mzVq83hbXk29TTgrQw",
			want: "code=AQDx...&state=mzVq...",
		},
		{
			name: "short secret fully hidden",
			raw:  "token=abc",
			want: "token=%2A%2A%2A",
		},
		{
			name: "mixed params",
			raw:  "error=access_denied&state=longenoughvalue123",
			want: "error=access_denied&state=long...",
		},
	}

	for i := range tests {
		got := MaskSensitiveQuery(tests[i].raw)
		if got != tests[i].want {
			t.Fatalf("%s: got %q, want %q", tests[i].name, got, tests[i].want)
		}
	}
}

func TestGenerateRequestIDLength(t *testing.T) {
	id := GenerateRequestID()
	if len(id) != 8 {
		t.Fatalf("got request id %q with length %d, want 8", id, len(id))
	}
}
