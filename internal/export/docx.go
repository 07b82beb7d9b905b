package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/pavelanni/lessonpress/internal/model"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// EncodeDOCX maps each page's structural elements (headings, paragraphs,
// lists, tables) to word-processing constructs and packs them into a
// wordprocessingml container. Tables stay real document tables.
func EncodeDOCX(m model.MaterialRecord, pages []model.Page) (*Artifact, error) {
	if m.Kind == model.KindSlides {
		return nil, ErrFormatNotApplicable
	}

	var blocks []docxBlock
	for i, p := range pages {
		if i > 0 {
			blocks = append(blocks, docxBlock{pageBreak: true})
		}
		pageBlocks, err := pageToBlocks(p.HTML)
		if err != nil {
			return nil, fmt.Errorf("map page %d: %w", p.Index, err)
		}
		blocks = append(blocks, pageBlocks...)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	parts := map[string]string{
		"[Content_Types].xml":          docxContentTypes,
		"_rels/.rels":                  docxRootRels,
		"word/_rels/document.xml.rels": docxWordRels,
		"word/styles.xml":              docxStyles,
		"word/numbering.xml":           docxNumbering,
		"word/document.xml":            blocksToDocumentXML(blocks),
	}
	for path, content := range parts {
		entry, err := zw.Create(path)
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return &Artifact{
		Filename: suggestedFilename(m, "docx"),
		MIME:     docxMIME,
		Data:     buf.Bytes(),
	}, nil
}

// docxBlock is one body-level construct of the output document.
type docxBlock struct {
	style     string // Heading1..3, Normal, ListParagraph
	runs      []docxRun
	table     [][]string // non-nil for tables: rows of cell texts
	list      bool       // ListParagraph with bullet numbering
	pageBreak bool
}

type docxRun struct {
	text   string
	bold   bool
	italic bool
}

// pageToBlocks walks a shelled page and maps its content to blocks.
// Page chrome (brand header/footer) stays out of the document body.
func pageToBlocks(pageHTML string) ([]docxBlock, error) {
	root, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, err
	}
	var blocks []docxBlock
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "style" || n.Data == "script":
				return
			case nodeHasClass(n, "page-header") || nodeHasClass(n, "page-footer"):
				return
			case n.Data == "h1":
				blocks = append(blocks, docxBlock{style: "Heading1", runs: collectRuns(n, false, false)})
				return
			case n.Data == "h2":
				blocks = append(blocks, docxBlock{style: "Heading2", runs: collectRuns(n, false, false)})
				return
			case n.Data == "h3":
				blocks = append(blocks, docxBlock{style: "Heading3", runs: collectRuns(n, false, false)})
				return
			case n.Data == "p":
				blocks = append(blocks, docxBlock{style: "Normal", runs: collectRuns(n, false, false)})
				return
			case n.Data == "li":
				blocks = append(blocks, docxBlock{style: "ListParagraph", list: true, runs: collectRuns(n, false, false)})
				return
			case n.Data == "table":
				blocks = append(blocks, docxBlock{table: tableRows(n)})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks, nil
}

// collectRuns flattens inline content into styled runs.
func collectRuns(n *html.Node, bold, italic bool) []docxRun {
	var runs []docxRun
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				runs = append(runs, docxRun{text: text, bold: bold, italic: italic})
			}
		case html.ElementNode:
			b, i := bold, italic
			switch c.Data {
			case "strong", "b":
				b = true
			case "em", "i":
				i = true
			}
			runs = append(runs, collectRuns(c, b, i)...)
		}
	}
	return runs
}

func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(allText(c)))
				}
			}
			rows = append(rows, cells)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func allText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func nodeHasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func blocksToDocumentXML(blocks []docxBlock) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
`)
	for _, b := range blocks {
		switch {
		case b.pageBreak:
			sb.WriteString(`    <w:p><w:r><w:br w:type="page"/></w:r></w:p>` + "\n")
		case b.table != nil:
			writeTableXML(&sb, b.table)
		default:
			writeParagraphXML(&sb, b)
		}
	}
	sb.WriteString(`    <w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>
  </w:body>
</w:document>`)
	return sb.String()
}

func writeParagraphXML(sb *strings.Builder, b docxBlock) {
	sb.WriteString("    <w:p><w:pPr>")
	if b.style != "" && b.style != "Normal" {
		fmt.Fprintf(sb, `<w:pStyle w:val="%s"/>`, b.style)
	}
	if b.list {
		sb.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	sb.WriteString("</w:pPr>")
	for i, r := range b.runs {
		sb.WriteString("<w:r><w:rPr>")
		if r.bold {
			sb.WriteString("<w:b/>")
		}
		if r.italic {
			sb.WriteString("<w:i/>")
		}
		sb.WriteString("</w:rPr>")
		// Runs are whitespace-trimmed when collected, so the separating
		// space is restored between runs only, never at the edges.
		text := r.text
		if i > 0 {
			text = " " + text
		}
		fmt.Fprintf(sb, `<w:t xml:space="preserve">%s</w:t>`, xmlEscape(text))
		sb.WriteString("</w:r>")
	}
	sb.WriteString("</w:p>\n")
}

func writeTableXML(sb *strings.Builder, rows [][]string) {
	sb.WriteString(`    <w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:tblW w:w="0" w:type="auto"/></w:tblPr>` + "\n")
	for _, row := range rows {
		sb.WriteString("      <w:tr>")
		for _, cell := range row {
			fmt.Fprintf(sb, `<w:tc><w:tcPr><w:tcW w:w="0" w:type="auto"/></w:tcPr><w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`, xmlEscape(cell))
		}
		sb.WriteString("</w:tr>\n")
	}
	sb.WriteString("    </w:tbl>\n")
}

func xmlEscape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
  <Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const docxWordRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal">
    <w:name w:val="Normal"/>
    <w:qFormat/>
    <w:pPr><w:spacing w:after="120" w:line="240" w:lineRule="auto"/></w:pPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
    <w:basedOn w:val="Normal"/>
    <w:next w:val="Normal"/>
    <w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="480" w:after="0"/><w:outlineLvl w:val="0"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="36"/><w:szCs w:val="36"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading2">
    <w:name w:val="heading 2"/>
    <w:basedOn w:val="Normal"/>
    <w:next w:val="Normal"/>
    <w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="360" w:after="0"/><w:outlineLvl w:val="1"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="32"/><w:szCs w:val="32"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading3">
    <w:name w:val="heading 3"/>
    <w:basedOn w:val="Normal"/>
    <w:next w:val="Normal"/>
    <w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="280" w:after="0"/><w:outlineLvl w:val="2"/></w:pPr>
    <w:rPr><w:b/><w:sz w:val="28"/><w:szCs w:val="28"/></w:rPr>
  </w:style>
  <w:style w:type="paragraph" w:styleId="ListParagraph">
    <w:name w:val="List Paragraph"/>
    <w:basedOn w:val="Normal"/>
    <w:qFormat/>
    <w:pPr><w:ind w:left="720"/><w:contextualSpacing/></w:pPr>
  </w:style>
  <w:style w:type="table" w:styleId="TableGrid">
    <w:name w:val="Table Grid"/>
    <w:pPr><w:spacing w:after="0" w:line="240" w:lineRule="auto"/></w:pPr>
    <w:tblPr>
      <w:tblBorders>
        <w:top w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:left w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:bottom w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:right w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:insideH w:val="single" w:sz="4" w:space="0" w:color="auto"/>
        <w:insideV w:val="single" w:sz="4" w:space="0" w:color="auto"/>
      </w:tblBorders>
    </w:tblPr>
  </w:style>
</w:styles>`

const docxNumbering = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:abstractNum w:abstractNumId="0">
    <w:multiLevelType w:val="hybridMultilevel"/>
    <w:lvl w:ilvl="0">
      <w:start w:val="1"/>
      <w:numFmt w:val="bullet"/>
      <w:lvlText w:val="&#8226;"/>
      <w:lvlJc w:val="left"/>
      <w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr>
      <w:rPr><w:rFonts w:ascii="Symbol" w:hAnsi="Symbol" w:hint="default"/></w:rPr>
    </w:lvl>
  </w:abstractNum>
  <w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
</w:numbering>`
