package embed

import "context"

// URL of the embeddable analyzer page
const URL = "https://smartmemorandum.netlify.app/embed"

// Snippet is the exact markup users paste into their site.
const Snippet = `<iframe src="` + URL + `" width="100%" height="600" frameborder="0"></iframe>`

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(ctx context.Context, text string)
}
