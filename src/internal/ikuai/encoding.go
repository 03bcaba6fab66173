package ikuai

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// decodeBody returns b as UTF-8. Router firmware sometimes emits GBK/GB18030
// (device comments, host names); anything that is not valid UTF-8 is decoded as
// GB18030, and bytes that fail both are replaced with U+FFFD.
func decodeBody(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}

	decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), b)
	if err == nil && utf8.Valid(decoded) {
		return decoded
	}

	return bytes.ToValidUTF8(b, []byte("�"))
}
