package rawdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"path"
	"strings"
)

// zipMagic opens every packaged (.twbx) workbook.
var zipMagic = []byte("PK\x03\x04")

// Read decodes markup into a tree. Empty, truncated or ill-nested input and
// anything after the root element yield a *MalformedDocumentError.
func Read(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, malformed(0, "empty document")
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, malformed(dec.InputOffset(), "unexpected element <%s> after root element", qualifiedName(t.Name))
			}
			n := &Node{Tag: qualifiedName(t.Name)}
			if len(t.Attr) > 0 {
				n.Attrs = make([]Attr, 0, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs = append(n.Attrs, Attr{Name: qualifiedName(a.Name), Value: a.Value})
				}
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				return nil, malformed(dec.InputOffset(), "unexpected end element </%s>", name)
			}
			if top := stack[len(stack)-1]; top.Tag != name {
				return nil, malformed(dec.InputOffset(), "element <%s> closed by </%s>", top.Tag, name)
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			} else if len(bytes.TrimSpace(t)) > 0 {
				return nil, malformed(dec.InputOffset(), "character data outside root element")
			}
		}
	}

	if len(stack) > 0 {
		return nil, malformed(dec.InputOffset(), "unexpected end of document: <%s> not closed", stack[len(stack)-1].Tag)
	}
	if root == nil {
		return nil, malformed(dec.InputOffset(), "no root element")
	}
	return root, nil
}

// ReadPackaged reads either plain markup or a zip package holding it, in
// which case the first .twb entry is used.
func ReadPackaged(data []byte) (*Node, error) {
	if !IsPackaged(data) {
		return Read(data)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	for _, file := range zr.File {
		if !strings.EqualFold(path.Ext(file.Name), ".twb") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, &MalformedDocumentError{Err: err}
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &MalformedDocumentError{Err: err}
		}
		return Read(content)
	}
	return nil, malformed(0, "package contains no .twb entry")
}

// IsPackaged reports whether data is a zip package.
func IsPackaged(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
