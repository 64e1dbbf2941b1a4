package dbf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Valentin-Kaiser/go-dbase/dbase"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Legacy DBF files predate Unicode; text fields carry a code page chosen
// at authoring time. cp1252 covers most western-language files.
var encodings = map[string]encoding.Encoding{
	"cp437":    charmap.CodePage437,
	"cp850":    charmap.CodePage850,
	"cp866":    charmap.CodePage866,
	"cp1250":   charmap.Windows1250,
	"cp1251":   charmap.Windows1251,
	"cp1252":   charmap.Windows1252,
	"big5":     traditionalchinese.Big5,
	"gbk":      simplifiedchinese.GBK,
	"shiftjis": japanese.ShiftJIS,
}

// SupportedEncodings lists the accepted encoding names, sorted.
func SupportedEncodings() []string {
	names := make([]string, 0, len(encodings))
	for name := range encodings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func converterFor(name string) (dbase.EncodingConverter, error) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported dbf encoding %q (valid: %s)",
			name, strings.Join(SupportedEncodings(), ", "))
	}
	return dbase.NewDefaultConverter(enc), nil
}
