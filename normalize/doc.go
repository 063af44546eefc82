// Package normalize converts raw table cells into nullable integers and
// cleans row labels.
//
// Cell never fails. Anything that is not an optionally negative run of
// digits once line breaks, thousands separators and whitespace have been
// removed becomes a null value, so malformed numeric data turns into missing
// data instead of aborting a load:
//
//	normalize.Cell("1,234")  // 1234
//	normalize.Cell("-56")    // -56
//	normalize.Cell("")       // null
//	normalize.Cell("N/A")    // null
//
// Input is folded with Unicode NFKC first, which maps full-width digits and
// the various typographic spaces used as digit group separators onto their
// ASCII forms.
package normalize
