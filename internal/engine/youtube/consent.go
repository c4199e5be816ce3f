package youtube

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// hiddenInputs collects name/value pairs of every <input type="hidden"> on
// the consent interstitial. Later duplicates win.
func hiddenInputs(doc []byte) url.Values {
	vals := url.Values{}
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return vals
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			var typ, name, value string
			for _, a := range tok.Attr {
				switch a.Key {
				case "type":
					typ = strings.ToLower(a.Val)
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				}
			}
			if typ == "hidden" && name != "" {
				vals.Set(name, value)
			}
		}
	}
}

// consentParams is the query the consent-save endpoint expects.
func consentParams(doc []byte, pageURL string) url.Values {
	params := hiddenInputs(doc)
	params.Set("continue", pageURL)
	params.Set("set_eom", "false")
	params.Set("set_ytc", "true")
	params.Set("set_apyt", "true")
	return params
}
