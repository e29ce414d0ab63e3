package collate

import (
	"regexp"
	"strconv"
	"testing"
)

func TestNumPages(t *testing.T) {
	cases := []struct {
		total uint32
		ipp   uint8
		want  uint32
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{47, 10, 5},
		{50, 10, 5},
		{51, 5, 11},
	}
	for _, c := range cases {
		page := NewPage("/", 1, c.ipp)
		if got := page.NumPages(c.total); got != c.want {
			t.Fatalf("NumPages(%d) with ipp %d is %d, want %d", c.total, c.ipp, got, c.want)
		}
	}
}

func TestWindowsNoOverlapNoGap(t *testing.T) {
	const total = 47
	var next uint32
	for p := uint32(1); p <= 5; p++ {
		page := NewPage("/", p, 10)
		start, end := page.Window(total)
		if start != next {
			t.Fatalf("page %d starts at %d, want %d", p, start, next)
		}
		if want := page.Start(); start != want {
			t.Fatalf("page %d window start %d disagrees with Start() %d", p, start, want)
		}
		if want := page.End(); end != want {
			t.Fatalf("page %d window end %d disagrees with End() %d", p, end, want)
		}
		next = end + 1
	}
}

func TestPageDataClamp(t *testing.T) {
	// 3 pages of 10 for 25 items
	cases := []struct {
		curPage uint32
		want    uint32
	}{
		{0, 1},
		{1, 1},
		{3, 3},
		{99, 3},
	}
	for _, c := range cases {
		page := NewPage("/", c.curPage, 10)
		_, cur, numPages := page.PageData(25)
		if numPages != 3 {
			t.Fatalf("numPages is %d", numPages)
		}
		if cur != c.want {
			t.Fatalf("cur_page %d clamps to %d, want %d", c.curPage, cur, c.want)
		}
		// the slicing window must use the identical clamp
		start, _ := page.Window(25)
		if start != (c.want-1)*10 {
			t.Fatalf("cur_page %d slices from %d, want %d", c.curPage, start, (c.want-1)*10)
		}
	}
}

func TestLinkParseRoundTrip(t *testing.T) {
	cases := []struct {
		curPage uint32
		ipp     uint8
		want    string
	}{
		{1, DefaultIPP, "/tag/rust"},
		{2, DefaultIPP, "/tag/rust?page=2"},
		{1, 25, "/tag/rust?ipp=25"},
		{4, 25, "/tag/rust?page=4&ipp=25"},
	}
	for _, c := range cases {
		page := NewPage("/tag/rust", c.curPage, c.ipp)
		link := page.Link(c.curPage)
		if link != c.want {
			t.Fatalf("link is %q, want %q", link, c.want)
		}
		query := ""
		if i := len("/tag/rust?"); len(link) > i {
			query = link[i:]
		}
		parsed := ParseQuery(query, "/tag/rust")
		if parsed.CurPage != c.curPage || parsed.Settings.IPP() != c.ipp {
			t.Fatalf("parsed (%d, %d), want (%d, %d)",
				parsed.CurPage, parsed.Settings.IPP(), c.curPage, c.ipp)
		}
	}
}

func TestParseQueryDefaults(t *testing.T) {
	cases := []string{"", "page", "page=x&ipp", "foo=bar", "page=&ipp="}
	for _, query := range cases {
		page := ParseQuery(query, "/")
		if page.CurPage != 1 || page.Settings.IPP() != DefaultIPP {
			t.Fatalf("query %q parsed to (%d, %d)", query, page.CurPage, page.Settings.IPP())
		}
	}
}

func TestCheckIPP(t *testing.T) {
	if got := CheckIPP(1); got != MinIPP {
		t.Fatalf("CheckIPP(1) is %d", got)
	}
	if got := CheckIPP(200); got != MaxIPP {
		t.Fatalf("CheckIPP(200) is %d", got)
	}
	if got := CheckIPP(25); got != 25 {
		t.Fatalf("CheckIPP(25) is %d", got)
	}
}

var plainLinkRe = regexp.MustCompile(`>(\d+)</a>`)

func TestNavigationAbbreviated(t *testing.T) {
	// 20 pages of 10 for 200 items, current page 10
	page := NewPage("/", 10, 10)
	nav := page.Navigation(200)

	want := []uint32{1, 2, 3, 7, 8, 9, 11, 12, 13, 18, 19, 20}
	var got []uint32
	for _, m := range plainLinkRe.FindAllStringSubmatch(nav, -1) {
		n, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, uint32(n))
	}
	if len(got) != len(want) {
		t.Fatalf("nav links are %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nav links are %v, want %v", got, want)
		}
	}
	if !regexp.MustCompile(`class="active">\[10\]`).MatchString(nav) {
		t.Fatalf("no active link for page 10 in %s", nav)
	}
	if !regexp.MustCompile(`>\[Previous\]</a>`).MatchString(nav) {
		t.Fatalf("no previous link in %s", nav)
	}
	if !regexp.MustCompile(`>\[Next\]</a>`).MatchString(nav) {
		t.Fatalf("no next link in %s", nav)
	}
}

func TestNavigationEdges(t *testing.T) {
	first := NewPage("/", 1, 10)
	if nav := first.Navigation(200); regexp.MustCompile(`\[Previous\]`).MatchString(nav) {
		t.Fatalf("first page has a previous link: %s", nav)
	}
	last := NewPage("/", 20, 10)
	if nav := last.Navigation(200); regexp.MustCompile(`\[Next\]`).MatchString(nav) {
		t.Fatalf("last page has a next link: %s", nav)
	}
}

func TestNavigationShowsAllWhenFew(t *testing.T) {
	// 4 pages, current 2: both sides below the abbreviation threshold
	page := NewPage("/", 2, 10)
	nav := page.Navigation(40)
	if regexp.MustCompile(`\.\.\.`).MatchString(nav) {
		t.Fatalf("unexpected ellipsis in %s", nav)
	}
	var got []string
	for _, m := range plainLinkRe.FindAllStringSubmatch(nav, -1) {
		got = append(got, m[1])
	}
	want := []string{"1", "3", "4"}
	if len(got) != len(want) {
		t.Fatalf("nav links are %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nav links are %v, want %v", got, want)
		}
	}
}

func TestSQL(t *testing.T) {
	page := NewPage("/", 3, 10)
	got := page.SQL("SELECT * FROM articles", "modified DESC")
	want := "SELECT * FROM articles ORDER BY modified DESC LIMIT 10 OFFSET 20"
	if got != want {
		t.Fatalf("sql is %q, want %q", got, want)
	}
}
