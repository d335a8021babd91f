package fetch

import (
	"bytes"
	"io"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// minDetectConfidence is the lowest chardet confidence (0-100) accepted
// over the HTML5 default encoding.
const minDetectConfidence = 50

// fallbackCharset is what DetermineEncoding reports when it found nothing.
const fallbackCharset = "windows-1252"

// decodeBody returns a reader producing body as UTF-8.
//
// The encoding is taken from a BOM, the Content-Type label or a <meta>
// declaration. When none of those name one and the body is not valid UTF-8,
// chardet guesses it if detect is set; otherwise windows-1252 applies.
func decodeBody(body []byte, contentType string, detect bool) (io.Reader, error) {
	_, name, certain := charset.DetermineEncoding(body, contentType)

	if !certain && detect && name == fallbackCharset {
		if guess := detectCharset(body); guess != "" {
			if r, err := charset.NewReaderLabel(guess, bytes.NewReader(body)); err == nil {
				return r, nil
			}
		}
	}

	return charset.NewReaderLabel(name, bytes.NewReader(body))
}

func detectCharset(body []byte) string {
	result, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || result.Confidence < minDetectConfidence {
		return ""
	}
	return result.Charset
}
