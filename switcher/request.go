package switcher

import (
	"math"
	"net/url"
	"strings"
)

// Request is the part of an incoming HTTP request the flow reads. It is parsed
// once at the transport boundary.
type Request struct {
	Page    int
	PerPage int

	HasSwitch bool
	TargetID  int64
	Nonce     string
}

// ParseRequest extracts listing parameters from query and switch fields from
// the posted form. Missing or malformed listing parameters become 0 and are
// replaced by defaults when the listing is built.
func ParseRequest(query url.Values, form url.Values) Request {
	req := Request{
		Page:    clampInt(leadingInt(query.Get(ParamPage))),
		PerPage: clampInt(leadingInt(query.Get(ParamPerPage))),
	}

	if _, ok := query[ParamPage]; !ok {
		req.Page = DefaultPage
	}

	_, hasNonce := form[ParamNonce]
	_, hasTarget := form[ParamTargetID]
	if hasNonce && hasTarget {
		req.HasSwitch = true
		req.TargetID = leadingInt(form.Get(ParamTargetID))
		req.Nonce = strings.TrimSpace(form.Get(ParamNonce))
	}
	return req
}

// leadingInt parses an optional sign and the leading decimal digits of s,
// ignoring surrounding whitespace and anything after the digits. Input with
// no digits yields 0, and values that overflow saturate.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	const limit = int64(1<<63 - 1)
	var n int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		d := int64(c - '0')
		if n > (limit-d)/10 {
			n = limit
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

func clampInt(v int64) int {
	return int(max(math.MinInt, min(v, math.MaxInt)))
}
