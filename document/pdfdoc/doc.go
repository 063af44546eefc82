// Package pdfdoc reads PDF pages into page geometry.
//
// Glyphs come from github.com/ledongthuc/pdf and become [model.Char] values
// with their font-size high boxes. Rulings are read from the raw content
// stream: [contentstream] tokenizes it and [graphicsstate] follows the
// transformation matrix through q, Q and cm, so both stroked paths and
// filled rectangles land in page space as [model.Page] lines and rects.
// Form XObjects are followed.
//
// [Page] serves both extractors from the same geometry: Text rebuilds the text
// layer line by line, Tables runs the table finder.
package pdfdoc
