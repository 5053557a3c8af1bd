package pagination

// Delta is the number of neighbours shown on each side of the current page.
const Delta = 2

// Sizes are the page sizes offered to the visitor.
var Sizes = []int{12, 24, 48}

// Item is one entry of the page control.
type Item struct {
	// Page is the zero-based page index; -1 for an ellipsis
	Page int `json:"page"`

	// Label is the one-based page number; 0 for an ellipsis
	Label int `json:"label"`

	Ellipsis bool `json:"ellipsis,omitempty"`
}

// Window returns the page control for current (zero-based) out of total
// pages: the first and last page, up to Delta neighbours of the current
// page, and ellipsis markers for the gaps. It returns nil when total <= 1.
func Window(current, total int) []Item {
	if total <= 1 {
		return nil
	}
	current = Clamp(current, total)
	label := current + 1

	items := []Item{page(1)}
	lo := max(2, label-Delta)
	hi := min(total-1, label+Delta)

	if label-Delta > 2 {
		items = append(items, ellipsis())
	}
	for n := lo; n <= hi; n++ {
		items = append(items, page(n))
	}
	if label+Delta < total-1 {
		items = append(items, ellipsis())
	}
	items = append(items, page(total))
	return items
}

func page(label int) Item {
	return Item{Page: label - 1, Label: label}
}

func ellipsis() Item {
	return Item{Page: -1, Ellipsis: true}
}

// Clamp limits page to [0, total-1]. With no pages it returns 0.
func Clamp(page, total int) int {
	if page < 0 || total <= 0 {
		return 0
	}
	if page >= total {
		return total - 1
	}
	return page
}

// ValidSize reports whether size is one of Sizes.
func ValidSize(size int) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}
