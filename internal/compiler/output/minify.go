package output

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Minify shrinks CSS with esbuild's CSS transform. It is applied after
// emission, so it sees the same text any other style would produce.
func Minify(css string) (string, error) {
	r := api.Transform(css, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
		LegalComments:    api.LegalCommentsInline,
		Sourcefile:       "output.css",
	})
	if len(r.Errors) > 0 {
		msgs := make([]string, 0, len(r.Errors))
		for _, m := range r.Errors {
			if m.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
			} else {
				msgs = append(msgs, m.Text)
			}
		}
		return "", fmt.Errorf("minify: %s", strings.Join(msgs, "; "))
	}
	return string(r.Code), nil
}
