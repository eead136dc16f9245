package search

// DefaultResultsPerPage is used when no page size is configured.
const DefaultResultsPerPage = 10

// Page is one page of ranked results. PerPage 0 means every result on a
// single page.
type Page struct {
	Results    []Result `json:"results"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
	TotalItems int      `json:"total_items"`
}

// PageCount returns the number of pages needed for total items.
func PageCount(total, perPage int) int {
	if perPage <= 0 {
		if total == 0 {
			return 0
		}
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ValidPage reports whether page can be navigated to.
func ValidPage(page, total, perPage int) bool {
	return page >= 1 && page <= PageCount(total, perPage)
}

// Paginate slices results. Out of range pages are clamped.
func Paginate(results []Result, page, perPage int) Page {
	if perPage < 0 {
		perPage = 0
	}
	if results == nil {
		results = []Result{}
	}
	total := len(results)
	pages := PageCount(total, perPage)

	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	p := Page{Page: page, PerPage: perPage, TotalPages: pages, TotalItems: total}
	if perPage == 0 {
		p.Results = results
		return p
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	p.Results = results[start:end]
	return p
}

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a preceding page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }
