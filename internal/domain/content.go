package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ContentKind is the discriminant of a block's content.
type ContentKind string

const (
	ContentIcon  ContentKind = "icon"
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentTable ContentKind = "table"
)

// DefaultIcon is the fixed symbol assigned by the "set icon" action.
const DefaultIcon = "★"

// Content is what a block displays. Exactly one of IconContent, TextContent,
// ImageContent or TableContent.
type Content interface {
	Kind() ContentKind
	// Clone returns a copy that shares no mutable state with the receiver.
	Clone() Content
	isContent()
}

// IconContent is the fixed symbol payload.
type IconContent struct {
	Symbol string
}

// TextContent is a user-supplied string.
type TextContent struct {
	Text string
}

// ImageContent holds an encoded image as a data URI (data:<mime>;base64,...).
type ImageContent struct {
	DataURI string
}

// TableContent is an ordered list of rows returned by the table generator.
type TableContent struct {
	Rows []*Row
}

func (IconContent) Kind() ContentKind  { return ContentIcon }
func (TextContent) Kind() ContentKind  { return ContentText }
func (ImageContent) Kind() ContentKind { return ContentImage }
func (TableContent) Kind() ContentKind { return ContentTable }

func (c IconContent) Clone() Content  { return c }
func (c TextContent) Clone() Content  { return c }
func (c ImageContent) Clone() Content { return c }
func (c TableContent) Clone() Content { return TableContent{Rows: CloneRows(c.Rows)} }

func (IconContent) isContent()  {}
func (TextContent) isContent()  {}
func (ImageContent) isContent() {}
func (TableContent) isContent() {}

// NewIcon returns the fixed icon payload.
func NewIcon() IconContent {
	return IconContent{Symbol: DefaultIcon}
}

// ── JSON ───────────────────────────────────────────────────

type contentEnvelope struct {
	Type    ContentKind `json:"type"`
	Symbol  string      `json:"symbol,omitempty"`
	Text    string      `json:"text,omitempty"`
	DataURI string      `json:"dataUri,omitempty"`
	Rows    []*Row      `json:"rows,omitempty"`
}

func (c IconContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentEnvelope{Type: ContentIcon, Symbol: c.Symbol})
}

func (c TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentEnvelope{Type: ContentText, Text: c.Text})
}

func (c ImageContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(contentEnvelope{Type: ContentImage, DataURI: c.DataURI})
}

// MarshalJSON always emits a rows array, even when empty.
func (c TableContent) MarshalJSON() ([]byte, error) {
	rows := c.Rows
	if rows == nil {
		rows = []*Row{}
	}
	return json.Marshal(struct {
		Type ContentKind `json:"type"`
		Rows []*Row      `json:"rows"`
	}{Type: ContentTable, Rows: rows})
}

// DecodeContent parses the tagged JSON form. An empty or null payload yields nil.
func DecodeContent(data []byte) (Content, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var env contentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	switch env.Type {
	case ContentIcon:
		return IconContent{Symbol: env.Symbol}, nil
	case ContentText:
		return TextContent{Text: env.Text}, nil
	case ContentImage:
		return ImageContent{DataURI: env.DataURI}, nil
	case ContentTable:
		return TableContent{Rows: env.Rows}, nil
	default:
		return nil, fmt.Errorf("decode content: unknown type %q", env.Type)
	}
}

// Variant selects which content types a canvas offers.
type Variant string

const (
	VariantFull  Variant = "full"  // icon, text, image, table
	VariantBasic Variant = "basic" // icon, text
)

// Supports reports whether the variant offers content of kind k.
func (v Variant) Supports(k ContentKind) bool {
	switch k {
	case ContentIcon, ContentText:
		return true
	case ContentImage, ContentTable:
		return v == VariantFull
	}
	return false
}
