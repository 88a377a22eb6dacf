package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/weather-station-etl/internal/domain"
	"golang.org/x/net/html/charset"
)

// XMLReader reads structured markup. Direct children of the root with text
// become key/value entries. A child holding only sub-elements is an
// alternation group: each sub-element's first attribute value is the key and
// its numeric text the value, e.g.
//
//	<temperature>
//	  <value unit="celsius"></value>
//	  <value unit="fahrenheit">98.6</value>
//	</temperature>
//
// yields celsius=nil, fahrenheit=98.6. Encodings other than UTF-8 declared
// in the XML header are decoded.
type XMLReader struct{}

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func (XMLReader) Read(path string) (domain.RawMeasurement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(path, err)
	}

	var root xmlNode
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&root); err != nil {
		return nil, wrap(path, fmt.Errorf("parse xml: %w", err))
	}

	out := make(domain.RawMeasurement, len(root.Children))
	for _, el := range root.Children {
		text := strings.TrimSpace(el.Text)
		switch {
		case text != "":
			out[el.XMLName.Local] = text
		case len(el.Children) > 0:
			if err := flattenGroup(el, out); err != nil {
				return nil, wrap(path, err)
			}
		default:
			out[el.XMLName.Local] = nil
		}
	}
	return out, nil
}

func flattenGroup(group xmlNode, out domain.RawMeasurement) error {
	for _, branch := range group.Children {
		if len(branch.Attrs) == 0 {
			return fmt.Errorf("element <%s> in group <%s> has no attribute", branch.XMLName.Local, group.XMLName.Local)
		}
		key := branch.Attrs[0].Value
		if key == "" {
			return errors.New("empty alternation key in group <" + group.XMLName.Local + ">")
		}

		text := strings.TrimSpace(branch.Text)
		if text == "" {
			out[key] = nil
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("group <%s> %s: %w", group.XMLName.Local, key, err)
		}
		out[key] = v
	}
	return nil
}
