// Package sheet holds the cell model and the column operations that run
// against any workbook implementing Workbook.
package sheet

// Kind tags which payload a Cell carries.
type Kind uint8

const (
	None Kind = iota
	Blank
	Bool
	Number
	String
	Error
	Formula
)

var kindNames = [...]string{
	None:    "none",
	Blank:   "blank",
	Bool:    "boolean",
	Number:  "numeric",
	String:  "string",
	Error:   "error",
	Formula: "formula",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Comment is a note attached to a cell.
type Comment struct {
	Author string
	Text   string
}

// Cell is a flat tagged value. Only the payload field selected by Kind is
// meaningful: Bool for Bool, Number for Number, Text for String, Error
// (the error code, e.g. "#DIV/0!") and Formula (the source text).
//
// Style is the workbook's opaque style id; Comment is shared, never copied.
type Cell struct {
	Kind    Kind
	Bool    bool
	Number  float64
	Text    string
	Style   int
	Comment *Comment
}

func BoolCell(v bool) *Cell { return &Cell{Kind: Bool, Bool: v} }
func NumberCell(v float64) *Cell { return &Cell{Kind: Number, Number: v} }
func StringCell(s string) *Cell { return &Cell{Kind: String, Text: s} }
func ErrorCell(code string) *Cell { return &Cell{Kind: Error, Text: code} }
func FormulaCell(src string) *Cell { return &Cell{Kind: Formula, Text: src} }
func BlankCell() *Cell { return &Cell{Kind: Blank} }

// Value returns the payload as a Go value, or nil for Blank and None.
func (c *Cell) Value() any {
	switch c.Kind {
	case Bool:
		return c.Bool
	case Number:
		return c.Number
	case String, Error, Formula:
		return c.Text
	}
	return nil
}

// CloneInto copies the style, comment and kind-tagged value of src onto dst.
// The comment pointer is shared. Formula text is copied verbatim: references
// inside it are not adjusted for the new position. dst must not be nil.
func CloneInto(dst, src *Cell) {
	dst.Style = src.Style
	dst.Comment = src.Comment
	dst.Kind = src.Kind
	dst.Bool, dst.Number, dst.Text = false, 0, ""

	switch src.Kind {
	case Bool:
		dst.Bool = src.Bool
	case Number:
		dst.Number = src.Number
	case String, Error, Formula:
		dst.Text = src.Text
	case Blank, None:
	}
}
