package source

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path"
	"strings"
)

// readZipFile returns the content of a package part, or nil when it does
// not exist.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

// readElementText collects the character data up to the end of the current
// element.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return text.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// resolvePart resolves a relationship target against the directory of the
// part owning the relationship.
func resolvePart(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// relsPath returns the relationships part of a package part.
func relsPath(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

type relationship struct {
	id, target, kind string
}

// parseRels reads every relationship of a .rels part.
func parseRels(data []byte) []relationship {
	var out []relationship
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			out = append(out, relationship{
				id:     attr(se, "Id"),
				target: attr(se, "Target"),
				kind:   strings.ToLower(attr(se, "Type")),
			})
		}
	}
	return out
}

// sheetParts maps sheet names to their worksheet parts, in workbook order.
func sheetParts(r *zip.Reader) ([]string, map[string]string, error) {
	workbook, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbook == nil {
		return nil, nil, err
	}
	rels, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || rels == nil {
		return nil, nil, err
	}

	targets := make(map[string]string)
	for _, rel := range parseRels(rels) {
		if strings.Contains(rel.kind, "worksheet") {
			targets[rel.id] = resolvePart(rel.target, "xl")
		}
	}

	var names []string
	parts := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(workbook))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			name, id := attr(se, "name"), attr(se, "id")
			if p, ok := targets[id]; ok && name != "" {
				names = append(names, name)
				parts[name] = p
			}
		}
	}
	return names, parts, nil
}
