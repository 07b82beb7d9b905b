package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pavelanni/lessonpress/internal/model"
)

const pptxMIME = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// 16:9 slide geometry in EMU.
const (
	slideCX = 12192000
	slideCY = 6858000
)

var imageFetchClient = &http.Client{Timeout: 10 * time.Second}

// EncodePPTX maps each Slide to one presentation slide, embedding the
// resolved illustration for eligible slides. Only slide-kind materials are
// applicable.
func EncodePPTX(ctx context.Context, m model.MaterialRecord, slides []model.Slide) (*Artifact, error) {
	if m.Kind != model.KindSlides {
		return nil, ErrFormatNotApplicable
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	writePart := func(path, content string) error {
		entry, err := zw.Create(path)
		if err != nil {
			return err
		}
		_, err = entry.Write([]byte(content))
		return err
	}

	static := []struct{ path, content string }{
		{"_rels/.rels", pptxRootRels},
		{"ppt/_rels/presentation.xml.rels", presentationRels(len(slides))},
		{"ppt/presentation.xml", presentationXML(len(slides))},
		{"ppt/slideMasters/slideMaster1.xml", pptxSlideMaster},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", pptxSlideMasterRels},
		{"ppt/slideLayouts/slideLayout1.xml", pptxSlideLayout},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", pptxSlideLayoutRels},
		{"ppt/theme/theme1.xml", pptxTheme},
	}
	if err := writePart("[Content_Types].xml", pptxContentTypes(len(slides))); err != nil {
		return nil, err
	}
	for _, p := range static {
		if err := writePart(p.path, p.content); err != nil {
			return nil, err
		}
	}

	for i, s := range slides {
		num := i + 1
		title, bullets := slideTexts(s.HTML)

		imageRel := ""
		if s.ImageURL != "" {
			data, ext, err := fetchImage(ctx, s.ImageURL)
			if err != nil {
				// Missing artwork degrades the deck visually, nothing more.
				slog.Warn("skipping slide image", "material", m.ID, "slide", s.Index, "error", err)
			} else {
				mediaPath := fmt.Sprintf("ppt/media/image%d.%s", num, ext)
				entry, err := zw.Create(mediaPath)
				if err != nil {
					return nil, err
				}
				if _, err := entry.Write(data); err != nil {
					return nil, err
				}
				imageRel = fmt.Sprintf("image%d.%s", num, ext)
			}
		}

		if err := writePart(fmt.Sprintf("ppt/slides/slide%d.xml", num), slideXML(title, bullets, imageRel != "")); err != nil {
			return nil, err
		}
		if err := writePart(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), slideRels(imageRel)); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return &Artifact{
		Filename: suggestedFilename(m, "pptx"),
		MIME:     pptxMIME,
		Data:     buf.Bytes(),
	}, nil
}

// slideTexts pulls the title (first heading) and bullet lines out of one
// slide fragment.
func slideTexts(fragment string) (string, []string) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", nil
	}
	var title string
	var bullets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3":
				if title == "" {
					title = strings.TrimSpace(allText(n))
				}
				return
			case "li", "p":
				if text := strings.TrimSpace(allText(n)); text != "" {
					bullets = append(bullets, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return title, bullets
}

func fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := imageFetchClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, "", err
	}
	ext := "png"
	switch resp.Header.Get("Content-Type") {
	case "image/jpeg":
		ext = "jpeg"
	case "image/png":
		ext = "png"
	default:
		if strings.HasSuffix(strings.ToLower(url), ".jpg") || strings.HasSuffix(strings.ToLower(url), ".jpeg") {
			ext = "jpeg"
		}
	}
	return data, ext, nil
}

func slideXML(title string, bullets []string, withImage bool) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree>
    <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
    <p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
`)
	// Title box across the top.
	fmt.Fprintf(&sb, `    <p:sp>
      <p:nvSpPr><p:cNvPr id="2" name="Title"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="685800" y="457200"/><a:ext cx="10820400" cy="1143000"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
      <p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US" sz="3200" b="1"><a:solidFill><a:srgbClr val="16425B"/></a:solidFill></a:rPr><a:t>%s</a:t></a:r></a:p></p:txBody>
    </p:sp>
`, xmlEscape(title))

	// Body box; narrower when an illustration sits on the right.
	bodyCX := 10820400
	if withImage {
		bodyCX = 6400800
	}
	fmt.Fprintf(&sb, `    <p:sp>
      <p:nvSpPr><p:cNvPr id="3" name="Content"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>
      <p:spPr><a:xfrm><a:off x="685800" y="1828800"/><a:ext cx="%d" cy="4343400"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
      <p:txBody><a:bodyPr/><a:lstStyle/>
`, bodyCX)
	if len(bullets) == 0 {
		sb.WriteString("        <a:p><a:endParaRPr lang=\"en-US\"/></a:p>\n")
	}
	for _, b := range bullets {
		fmt.Fprintf(&sb, `        <a:p><a:pPr><a:buChar char="&#8226;"/></a:pPr><a:r><a:rPr lang="en-US" sz="1800"/><a:t>%s</a:t></a:r></a:p>
`, xmlEscape(b))
	}
	sb.WriteString("      </p:txBody>\n    </p:sp>\n")

	if withImage {
		sb.WriteString(`    <p:pic>
      <p:nvPicPr><p:cNvPr id="4" name="Illustration"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>
      <p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>
      <p:spPr><a:xfrm><a:off x="7315200" y="1828800"/><a:ext cx="4191000" cy="4191000"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>
    </p:pic>
`)
	}

	sb.WriteString(`  </p:spTree></p:cSld>
  <p:clrMapOvr><a:overrideClrMapping bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/></p:clrMapOvr>
</p:sld>`)
	return sb.String()
}

func slideRels(imageRel string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
`)
	if imageRel != "" {
		fmt.Fprintf(&sb, `  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/%s"/>
`, imageRel)
	}
	sb.WriteString("</Relationships>")
	return sb.String()
}

func pptxContentTypes(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Default Extension="jpeg" ContentType="image/jpeg"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
  <Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>
  <Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>
  <Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `  <Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
`, i)
	}
	sb.WriteString("</Types>")
	return sb.String()
}

func presentationXML(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>
  <p:sldIdLst>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `    <p:sldId id="%d" r:id="rId%d"/>
`, 255+i, 1+i)
	}
	fmt.Fprintf(&sb, `  </p:sldIdLst>
  <p:sldSz cx="%d" cy="%d"/>
  <p:notesSz cx="6858000" cy="9144000"/>
</p:presentation>`, slideCX, slideCY)
	return sb.String()
}

func presentationRels(slideCount int) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="slideMasters/slideMaster1.xml"/>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&sb, `  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>
`, 1+i, i)
	}
	sb.WriteString("</Relationships>")
	return sb.String()
}

const pptxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`

const pptxSlideMaster = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldMaster xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
    </p:spTree>
  </p:cSld>
  <p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>
  <p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>
</p:sldMaster>`

const pptxSlideMasterRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="../theme/theme1.xml"/>
</Relationships>`

const pptxSlideLayout = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" type="obj" preserve="1">
  <p:cSld name="Title and Content">
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>
    </p:spTree>
  </p:cSld>
  <p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>
</p:sldLayout>`

const pptxSlideLayoutRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>
</Relationships>`

const pptxTheme = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Lessonpress">
  <a:themeElements>
    <a:clrScheme name="Lessonpress">
      <a:dk1><a:srgbClr val="1A1A2E"/></a:dk1>
      <a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>
      <a:dk2><a:srgbClr val="16425B"/></a:dk2>
      <a:lt2><a:srgbClr val="F2F2F2"/></a:lt2>
      <a:accent1><a:srgbClr val="3A7CA5"/></a:accent1>
      <a:accent2><a:srgbClr val="D9A404"/></a:accent2>
      <a:accent3><a:srgbClr val="81A684"/></a:accent3>
      <a:accent4><a:srgbClr val="C17C74"/></a:accent4>
      <a:accent5><a:srgbClr val="6D6A75"/></a:accent5>
      <a:accent6><a:srgbClr val="2F6690"/></a:accent6>
      <a:hlink><a:srgbClr val="0563C1"/></a:hlink>
      <a:folHlink><a:srgbClr val="954F72"/></a:folHlink>
    </a:clrScheme>
    <a:fontScheme name="Lessonpress">
      <a:majorFont><a:latin typeface="Segoe UI"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>
      <a:minorFont><a:latin typeface="Segoe UI"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>
    </a:fontScheme>
    <a:fmtScheme name="Lessonpress">
      <a:fillStyleLst>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
      </a:fillStyleLst>
      <a:lnStyleLst>
        <a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
        <a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
        <a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>
      </a:lnStyleLst>
      <a:effectStyleLst>
        <a:effectStyle><a:effectLst/></a:effectStyle>
        <a:effectStyle><a:effectLst/></a:effectStyle>
        <a:effectStyle><a:effectLst/></a:effectStyle>
      </a:effectStyleLst>
      <a:bgFillStyleLst>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
        <a:solidFill><a:schemeClr val="phClr"/></a:solidFill>
      </a:bgFillStyleLst>
    </a:fmtScheme>
  </a:themeElements>
</a:theme>`
