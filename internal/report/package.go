package report

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
)

const contentTypesPart = "[Content_Types].xml"

// contentTypes mirrors the OPC [Content_Types].xml part.
type contentTypes struct {
	XMLName   xml.Name `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []contentTypeDefault  `xml:"Default"`
	Overrides []contentTypeOverride `xml:"Override"`
}

type contentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// normalizePackage rewrites an xlsx zip so equal workbooks give equal
// bytes. excelize registers image extensions in map order; entries, content
// type declarations and zip headers are put in a fixed order here.
func normalizePackage(pkg []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	files := append([]*zip.File(nil), zr.File...)
	sort.Slice(files, func(i, j int) bool {
		// [Content_Types].xml stays first, as Office writes it.
		if (files[i].Name == contentTypesPart) != (files[j].Name == contentTypesPart) {
			return files[i].Name == contentTypesPart
		}
		return files[i].Name < files[j].Name
	})

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, zf := range files {
		body, err := readPart(zf)
		if err != nil {
			return nil, err
		}
		if zf.Name == contentTypesPart {
			if body, err = sortContentTypes(body); err != nil {
				return nil, err
			}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: zf.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", zf.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("write %s: %w", zf.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return out.Bytes(), nil
}

func readPart(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", zf.Name, err)
	}
	return b, nil
}

func sortContentTypes(body []byte) ([]byte, error) {
	var ct contentTypes
	if err := xml.Unmarshal(body, &ct); err != nil {
		return nil, fmt.Errorf("parse %s: %w", contentTypesPart, err)
	}
	sort.Slice(ct.Defaults, func(i, j int) bool { return ct.Defaults[i].Extension < ct.Defaults[j].Extension })
	sort.Slice(ct.Overrides, func(i, j int) bool { return ct.Overrides[i].PartName < ct.Overrides[j].PartName })

	out, err := xml.Marshal(ct)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", contentTypesPart, err)
	}
	return append([]byte(xml.Header), out...), nil
}
