package testsupport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// EPUBSpineItem is one content document inside a built test container.
type EPUBSpineItem struct {
	// Name is the file name inside OEBPS/, e.g. "chapter01.xhtml".
	Name string
	// Body is the XHTML body content (everything between the body tags).
	Body string
}

// EPUBFixture describes a minimal but well-formed test container.
type EPUBFixture struct {
	Title    string
	Author   string
	Synopsis string
	Subjects []string
	Items    []EPUBSpineItem
}

// BuildEPUB writes a well-formed EPUB to a temp file and returns its path.
// The container has a mimetype entry first and a generated OPF listing every
// item in spine order.
func BuildEPUB(t testing.TB, fx EPUBFixture) string {
	t.Helper()

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	writeEntry(t, zw, "mimetype", "application/epub+zip")
	writeEntry(t, zw, "META-INF/container.xml", containerXML)
	writeEntry(t, zw, "OEBPS/content.opf", buildOPF(fx))
	for _, item := range fx.Items {
		writeEntry(t, zw, "OEBPS/"+item.Name, wrapXHTML(item.Body))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close container writer: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fixture.epub")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	return path
}

func writeEntry(t testing.TB, zw *zip.Writer, name, content string) {
	t.Helper()
	fw, err := zw.Create(name)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

func buildOPF(fx EPUBFixture) string {
	var meta strings.Builder
	if fx.Title != "" {
		fmt.Fprintf(&meta, "    <dc:title>%s</dc:title>\n", xmlEscape(fx.Title))
	}
	if fx.Author != "" {
		fmt.Fprintf(&meta, "    <dc:creator>%s</dc:creator>\n", xmlEscape(fx.Author))
	}
	if fx.Synopsis != "" {
		fmt.Fprintf(&meta, "    <dc:description>%s</dc:description>\n", xmlEscape(fx.Synopsis))
	}
	for _, subject := range fx.Subjects {
		fmt.Fprintf(&meta, "    <dc:subject>%s</dc:subject>\n", xmlEscape(subject))
	}

	var manifest, spine strings.Builder
	for i, item := range fx.Items {
		id := fmt.Sprintf("item%d", i+1)
		fmt.Fprintf(&manifest,
			"    <item id=%q href=%q media-type=\"application/xhtml+xml\"/>\n", id, item.Name)
		fmt.Fprintf(&spine, "    <itemref idref=%q/>\n", id)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="uid">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="uid">urn:uuid:00000000-0000-0000-0000-000000000000</dc:identifier>
%s  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, meta.String(), manifest.String(), spine.String())
}

func wrapXHTML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body>
` + body + `
</body></html>`
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
