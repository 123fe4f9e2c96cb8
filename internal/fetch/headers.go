package fetch

import "net/http"

// UserAgent mimics a desktop Chromium browser; several provider sites reject obvious bots.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36 Edg/138.0.0.0"

var browserHeaders = map[string]string{
	"sec-ch-ua":                 `"Not)A;Brand";v="8", "Chromium";v="138", "Microsoft Edge";v="138"`,
	"sec-ch-ua-mobile":          "?0",
	"sec-ch-ua-platform":        `"Windows"`,
	"upgrade-insecure-requests": "1",
}

// SetBrowserHeaders applies the User-Agent and client-hint headers to req.
func SetBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
}
