package log

import "testing"

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no query",
			in:   "https://px.example.com/imp",
			want: "https://px.example.com/imp",
		},
		{
			name: "harmless params untouched",
			in:   "https://px.example.com/imp?cb=1&tactic=333304",
			want: "https://px.example.com/imp?cb=1&tactic=333304",
		},
		{
			name: "token masked in place",
			in:   "https://px.example.com/imp?cb=1&token=abc&z=2",
			want: "https://px.example.com/imp?cb=1&token=" + MaskValue + "&z=2",
		},
		{
			name: "param names are case insensitive",
			in:   "https://px.example.com/imp?SIG=abc",
			want: "https://px.example.com/imp?SIG=" + MaskValue,
		},
		{
			name: "userinfo password dropped",
			in:   "http://user:pw@px.example.com/imp",
			want: "http://user@px.example.com/imp",
		},
		{
			name: "flag param without value",
			in:   "https://px.example.com/imp?token",
			want: "https://px.example.com/imp?token",
		},
		{
			name: "unparseable input",
			in:   "http://[::1",
			want: "http://[::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := RedactURL(tt.in); got != tt.want {
				t.Errorf("RedactURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedactURLs(t *testing.T) {
	t.Parallel()

	in := `Head "https://a.example.com/p?key=k1": EOF; retry https://b.example.com/q?x=1&api_key=k2`
	want := `Head "https://a.example.com/p?key=` + MaskValue + `": EOF; retry https://b.example.com/q?x=1&api_key=` + MaskValue

	if got := RedactURLs(in); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
	if got := RedactURLs("no urls here"); got != "no urls here" {
		t.Errorf("got %q", got)
	}
}
