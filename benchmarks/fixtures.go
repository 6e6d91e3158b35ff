// Package benchmarks measures the compiler on generated stylesheets.
package benchmarks

import (
	"fmt"
	"strings"
)

const prelude = `$base: 4px;
$palette: (primary: #336699, accent: #ff6600, muted: #999);

@function space($n) {
  @return $n * $base;
}

@mixin box($pad, $color: map-get($palette, primary)) {
  padding: space($pad);
  border: 1px solid darken($color, 10%);
  color: $color;
}

%card {
  display: block;
  margin: 0 auto;
}
`

// GenerateStylesheet generates SCSS with the given number of component
// blocks. Each block nests rules, includes a mixin, extends a placeholder
// and loops over the palette.
func GenerateStylesheet(components int) string {
	var sb strings.Builder
	sb.WriteString(prelude)

	for i := 0; i < components; i++ {
		fmt.Fprintf(&sb, `
.component-%d {
  @extend %%card;
  @include box(%d);
  width: (%d / 12) * 100%%;

  .title, .subtitle {
    font-size: 12px + %d;
    &:hover { color: lighten(#336699, 20%%); }
  }

  @each $name, $color in $palette {
    .is-#{$name} { background: rgba($color, 0.5); }
  }

  @media screen and (min-width: 768px) {
    width: 50%%;
  }
}
`, i, i%5+1, i%12+1, i%8)
	}

	return sb.String()
}

// CountLOC counts the non-empty lines of source
func CountLOC(source string) int {
	count := 0
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
