package web

import (
	"net/url"
	"strconv"
)

// PageLink is one element of the pagination bar.
type PageLink struct {
	Label   string
	Href    string
	Current bool
	Dots    bool
}

const (
	pagerEndSize = 1
	pagerMidSize = 2
)

// pageLinks builds the pagination bar for current of total pages. It shows
// the first and last page, two pages either side of current, and an ellipsis
// for every gap. Fewer than two pages yield no bar. extra is carried into
// every link.
func pageLinks(total, current int, prev, next string, extra url.Values) []PageLink {
	if total < 2 {
		return nil
	}

	href := func(page int) string {
		q := url.Values{}
		for k, v := range extra {
			q[k] = v
		}
		q.Set("paged", strconv.Itoa(page))
		return "?" + q.Encode()
	}

	var links []PageLink
	if current > 1 {
		links = append(links, PageLink{Label: prev, Href: href(current - 1)})
	}

	dots := false
	for n := 1; n <= total; n++ {
		switch {
		case n == current:
			links = append(links, PageLink{Label: strconv.Itoa(n), Current: true})
			dots = true
		case n <= pagerEndSize || (n >= current-pagerMidSize && n <= current+pagerMidSize) || n > total-pagerEndSize:
			links = append(links, PageLink{Label: strconv.Itoa(n), Href: href(n)})
			dots = true
		case dots:
			links = append(links, PageLink{Label: "…", Dots: true})
			dots = false
		}
	}

	if current < total {
		links = append(links, PageLink{Label: next, Href: href(current + 1)})
	}
	return links
}
