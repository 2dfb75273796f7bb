package switcher

import (
	"net/url"
	"testing"
)

func TestParseRequest(t *testing.T) {
	cases := []struct {
		name  string
		query url.Values
		form  url.Values
		want  Request
	}{
		{
			name: "defaults",
			want: Request{Page: DefaultPage},
		},
		{
			name:  "listing parameters",
			query: url.Values{ParamPage: {"3"}, ParamPerPage: {"25"}},
			want:  Request{Page: 3, PerPage: 25},
		},
		{
			name:  "malformed page",
			query: url.Values{ParamPage: {"abc"}},
			want:  Request{Page: 0},
		},
		{
			name: "switch fields",
			form: url.Values{ParamTargetID: {"42"}, ParamNonce: {" tok "}},
			want: Request{Page: DefaultPage, HasSwitch: true, TargetID: 42, Nonce: "tok"},
		},
		{
			name: "lenient target id",
			form: url.Values{ParamTargetID: {"42abc"}, ParamNonce: {"tok"}},
			want: Request{Page: DefaultPage, HasSwitch: true, TargetID: 42, Nonce: "tok"},
		},
		{
			name: "junk target id",
			form: url.Values{ParamTargetID: {"x"}, ParamNonce: {"tok"}},
			want: Request{Page: DefaultPage, HasSwitch: true, TargetID: 0, Nonce: "tok"},
		},
		{
			name: "nonce without target",
			form: url.Values{ParamNonce: {"tok"}},
			want: Request{Page: DefaultPage},
		},
		{
			name: "target without nonce",
			form: url.Values{ParamTargetID: {"42"}},
			want: Request{Page: DefaultPage},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query := tc.query
			if query == nil {
				query = url.Values{}
			}
			form := tc.form
			if form == nil {
				form = url.Values{}
			}
			if got := ParseRequest(query, form); got != tc.want {
				t.Fatalf("ParseRequest() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLeadingInt(t *testing.T) {
	cases := map[string]int64{
		"":                     0,
		"  12 ":                12,
		"-5":                   -5,
		"+8":                   8,
		"7.9":                  7,
		"abc":                  0,
		"99999999999999999999": 1<<63 - 1,
	}
	for in, want := range cases {
		if got := leadingInt(in); got != want {
			t.Fatalf("leadingInt(%q) = %d, want %d", in, got, want)
		}
	}
}
