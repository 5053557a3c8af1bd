// Package pagination computes the page controls of a paginated listing.
//
// Page indices are zero-based as on the wire; the numbers returned by
// Window are one-based labels as shown to the visitor.
//
// Example usage:
//
//	for _, item := range pagination.Window(page.Number, page.TotalPages) {
//		if item.Ellipsis {
//			// render "..."
//			continue
//		}
//		// render a link to item.Page (zero-based) labelled item.Label
//	}
package pagination
