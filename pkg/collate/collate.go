// Package collate computes page windows over item collections and renders
// the abbreviated navigation fragment used below paginated listings.
package collate

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultIPP is the page size used when a request does not ask for one.
	DefaultIPP uint8 = 10
	// MinIPP and MaxIPP bound the page sizes a client may request.
	MinIPP uint8 = 5
	MaxIPP uint8 = 50
	// AbsLinks is the number of page links always shown at each extremity.
	AbsLinks uint32 = 3
	// RelLinks is the number of page links shown adjacent to the current page.
	RelLinks uint32 = 3
)

// Settings exposes the page size used when slicing a collection.
// Route-specific types can implement it to override the stock defaults.
type Settings interface {
	IPP() uint8
	DefaultIPP() uint8
}

// Pagination is the stock Settings implementation.
type Pagination struct {
	Ipp uint8
}

func (p Pagination) IPP() uint8        { return p.Ipp }
func (p Pagination) DefaultIPP() uint8 { return DefaultIPP }

// CheckIPP clamps an items-per-page value into the allowed range.
func CheckIPP(ipp uint8) uint8 {
	if ipp < MinIPP {
		return MinIPP
	}
	if ipp > MaxIPP {
		return MaxIPP
	}
	return ipp
}

// Page is a pagination request: a 1-based page number over a route.
// Out-of-range page numbers saturate rather than error, see PageData.
type Page struct {
	CurPage  uint32
	Route    string
	Settings Settings
}

// NewPage returns a page over the given route with a clamped page size.
func NewPage(route string, curPage uint32, ipp uint8) Page {
	return Page{
		CurPage:  curPage,
		Route:    route,
		Settings: Pagination{Ipp: CheckIPP(ipp)},
	}
}

// ParseQuery builds a Page from a raw query string.
// Recognized keys are "page" and "ipp"; both fall back to their defaults on
// absence or parse failure. Unknown keys and malformed pairs are ignored.
func ParseQuery(query, route string) Page {
	curPage := uint32(1)
	ipp := DefaultIPP
	for _, pair := range strings.Split(query, "&") {
		chunks := strings.SplitN(pair, "=", 2)
		if len(chunks) != 2 {
			continue
		}
		switch chunks[0] {
		case "page":
			if v, err := strconv.ParseUint(chunks[1], 10, 32); err == nil {
				curPage = uint32(v)
			}
		case "ipp":
			if v, err := strconv.ParseUint(chunks[1], 10, 8); err == nil {
				ipp = uint8(v)
			}
		}
	}
	return NewPage(route, curPage, ipp)
}

// FromRequest builds a Page from the request's path and query string.
func FromRequest(r *http.Request) Page {
	return ParseQuery(r.URL.RawQuery, r.URL.Path)
}

// ipp returns the page size widened for index arithmetic.
func (p Page) ipp() uint32 {
	return uint32(p.Settings.IPP())
}

// Start returns the zero-based index of the first item on the page.
// With 5 items per page, page 3 starts at index 10.
func (p Page) Start() uint32 {
	cur := p.CurPage
	if cur == 0 {
		cur = 1
	}
	return (cur - 1) * p.ipp()
}

// End returns the zero-based index of the last item on the page.
// With 5 items per page, page 3 ends at index 14.
func (p Page) End() uint32 {
	cur := p.CurPage
	if cur == 0 {
		cur = 1
	}
	return cur*p.ipp() - 1
}

// NumPages returns the number of pages needed for totalItems.
// Integer division rounds towards zero, so a remainder adds one page.
func (p Page) NumPages(totalItems uint32) uint32 {
	ipp := p.ipp()
	if totalItems%ipp != 0 {
		return totalItems/ipp + 1
	}
	return totalItems / ipp
}

// PageData returns the page size, the clamped current page, and the page
// count. The clamp is display-only: pages past the end saturate to the last
// page and page zero becomes page one. Every consumer deriving page data
// must use this same clamp or links and slices will disagree.
func (p Page) PageData(totalItems uint32) (uint8, uint32, uint32) {
	numPages := p.NumPages(totalItems)
	display := numPages
	if display == 0 {
		display = 1
	}
	cur := p.CurPage
	if cur > display {
		cur = display
	} else if cur == 0 {
		cur = 1
	}
	return p.Settings.IPP(), cur, numPages
}

// Window returns the clamped zero-based [start, end] item indices for the
// page, using the same clamp as PageData.
func (p Page) Window(totalItems uint32) (uint32, uint32) {
	ipp, cur, _ := p.PageData(totalItems)
	start := (cur - 1) * uint32(ipp)
	return start, cur*uint32(ipp) - 1
}

// Limits returns the LIMIT/OFFSET pair for a parameterized store query.
func (p Page) Limits() (uint32, uint32) {
	return p.ipp(), p.Start()
}

// SQL appends an ORDER BY plus LIMIT/OFFSET clause to a query string.
func (p Page) SQL(query string, orderBy string) string {
	var b strings.Builder
	b.Grow(len(query) + len(orderBy) + 50)
	b.WriteString(query)
	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.FormatUint(uint64(p.ipp()), 10))
	b.WriteString(" OFFSET ")
	b.WriteString(strconv.FormatUint(uint64(p.Start()), 10))
	return b.String()
}

// PageInfo renders the "Showing page x of y" fragment.
func (p Page) PageInfo(totalItems uint32) string {
	_, cur, numPages := p.PageData(totalItems)
	var b strings.Builder
	b.WriteString("Showing page ")
	b.WriteString(strconv.FormatUint(uint64(cur), 10))
	b.WriteString(" of ")
	b.WriteString(strconv.FormatUint(uint64(numPages), 10))
	b.WriteString(" &nbsp; - &nbsp; ")
	b.WriteString(strconv.FormatUint(uint64(totalItems), 10))
	b.WriteString(" items found.")
	return b.String()
}

// Link builds the URL for the given page number on this page's route.
// Page one and the default page size are omitted from the query string, so
// the canonical first-page link is the bare route.
func (p Page) Link(pageNum uint32) string {
	var b strings.Builder
	b.WriteString(p.Route)
	hasQuery := false
	if pageNum > 1 {
		b.WriteString("?page=")
		b.WriteString(strconv.FormatUint(uint64(pageNum), 10))
		hasQuery = true
	}
	if p.Settings.IPP() != p.Settings.DefaultIPP() {
		if hasQuery {
			b.WriteString("&ipp=")
		} else {
			b.WriteString("?ipp=")
		}
		b.WriteString(strconv.FormatUint(uint64(p.Settings.IPP()), 10))
	}
	return b.String()
}

func (p Page) link(b *strings.Builder, pageNum uint32, text string) {
	b.WriteString(` <a href="`)
	b.WriteString(p.Link(pageNum))
	b.WriteString(`">`)
	b.WriteString(text)
	b.WriteString("</a> ")
}

func (p Page) linkActive(b *strings.Builder, pageNum uint32, text string) {
	b.WriteString(` <a href="`)
	b.WriteString(p.Link(pageNum))
	b.WriteString(`" class="active">[`)
	b.WriteString(text)
	b.WriteString("]</a> ")
}

func (p Page) pageLinks(b *strings.Builder, pages []uint32) {
	for _, page := range pages {
		p.link(b, page, strconv.FormatUint(uint64(page), 10))
	}
}

// seq returns [from, to) as a slice, empty when the range is empty.
func seq(from, to uint32) []uint32 {
	if to <= from {
		return nil
	}
	pages := make([]uint32, 0, to-from)
	for i := from; i < to; i++ {
		pages = append(pages, i)
	}
	return pages
}

// Navigation renders the abbreviated pagination fragment.
// Each side either lists every page between the extremity and the current
// page, or abbreviates to the outermost AbsLinks pages, an ellipsis, and the
// RelLinks pages adjacent to the current page. Previous/Next are omitted on
// the first/last page respectively.
func (p Page) Navigation(totalItems uint32) string {
	_, cur, numPages := p.PageData(totalItems)
	if numPages == 0 {
		numPages = 1
	}
	linksMin := AbsLinks + RelLinks

	var pagesLeft, pagesRight []uint32
	var frontOuter, frontInner, backInner, backOuter []uint32

	if cur <= linksMin || numPages <= linksMin {
		pagesLeft = seq(1, cur)
	} else {
		frontOuter = seq(1, AbsLinks+1)
		frontInner = seq(cur-RelLinks, cur)
	}

	if numPages-cur <= linksMin {
		pagesRight = seq(cur+1, numPages+1)
	} else {
		backInner = seq(cur+1, cur+RelLinks+1)
		backOuter = seq(numPages-AbsLinks+1, numPages+1)
	}

	var b strings.Builder
	b.Grow(512)
	b.WriteString(`<div class="v-collate row">`)

	b.WriteString(`<div class="v-collate-prevnext col-2">`)
	if cur != 1 {
		p.link(&b, cur-1, "[Previous]")
	}
	b.WriteString("</div>")

	b.WriteString(`<div class="v-collate-left col-3">`)
	if len(pagesLeft) != 0 {
		p.pageLinks(&b, pagesLeft)
	} else if len(frontOuter) != 0 || len(frontInner) != 0 {
		p.pageLinks(&b, frontOuter)
		b.WriteString(" ... ")
		p.pageLinks(&b, frontInner)
	}
	b.WriteString("</div>")

	b.WriteString(`<div class="v-collate-cur">`)
	p.linkActive(&b, cur, strconv.FormatUint(uint64(cur), 10))
	b.WriteString("</div>")

	b.WriteString(`<div class="v-collate-right col-3">`)
	if len(pagesRight) != 0 {
		p.pageLinks(&b, pagesRight)
	} else if len(backInner) != 0 || len(backOuter) != 0 {
		p.pageLinks(&b, backInner)
		b.WriteString(" ... ")
		p.pageLinks(&b, backOuter)
	}
	b.WriteString("</div>")

	b.WriteString(`<div class="v-collate-prevnext col-2">`)
	if cur != numPages {
		p.link(&b, cur+1, "[Next]")
	}
	b.WriteString("</div>")

	b.WriteString("</div>")
	return b.String()
}
