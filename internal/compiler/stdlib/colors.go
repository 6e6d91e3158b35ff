package stdlib

import (
	"fmt"
	"math"

	"github.com/conduit-lang/gosass/internal/compiler/ast"
)

// rgbChannel reads a red, green or blue argument. Percentages scale to 255
// and everything is clamped to the channel range.
func rgbChannel(a args, name string) (float64, error) {
	n, err := a.number(name)
	if err != nil {
		return 0, err
	}
	if n.Unit() == "%" {
		return clamp(n.Value/100, 0, 1) * 255, nil
	}
	return clamp(n.Value, 0, 255), nil
}

func alphaChannel(a args, name string) (float64, error) {
	n, err := a.number(name)
	if err != nil {
		return 0, err
	}
	if n.Unit() == "%" {
		return clamp(n.Value/100, 0, 1), nil
	}
	return clamp(n.Value, 0, 1), nil
}

func rgb(l *library, a args) (ast.Expression, error) {
	c := &ast.Color{A: 1, Loc: a.loc()}
	var err error
	if c.R, err = rgbChannel(a, "$red"); err != nil {
		return nil, err
	}
	if c.G, err = rgbChannel(a, "$green"); err != nil {
		return nil, err
	}
	if c.B, err = rgbChannel(a, "$blue"); err != nil {
		return nil, err
	}
	return c, nil
}

func rgba4(l *library, a args) (ast.Expression, error) {
	v, err := rgb(l, a)
	if err != nil {
		return nil, err
	}
	c := v.(*ast.Color)
	if c.A, err = alphaChannel(a, "$alpha"); err != nil {
		return nil, err
	}
	return c, nil
}

func rgba2(l *library, a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	out.Loc = a.loc()
	if out.A, err = alphaChannel(a, "$alpha"); err != nil {
		return nil, err
	}
	return out, nil
}

func channel(get func(*ast.Color) float64) builtin {
	return func(l *library, a args) (ast.Expression, error) {
		c, err := a.color("$color")
		if err != nil {
			return nil, err
		}
		return a.newNumber(get(c), ""), nil
	}
}

func mix(l *library, a args) (ast.Expression, error) {
	c1, err := a.color("$color-1")
	if err != nil {
		return nil, err
	}
	c2, err := a.color("$color-2")
	if err != nil {
		return nil, err
	}
	weight, err := a.ranged("$weight", 0, 100)
	if err != nil {
		return nil, err
	}

	p := weight / 100
	w := 2*p - 1
	da := c1.A - c2.A
	var w1 float64
	if w*da == -1 {
		w1 = (w + 1) / 2
	} else {
		w1 = ((w+da)/(1+w*da) + 1) / 2
	}
	w2 := 1 - w1
	return &ast.Color{
		R:   floor(w1*c1.R + w2*c2.R + 0.5),
		G:   floor(w1*c1.G + w2*c2.G + 0.5),
		B:   floor(w1*c1.B + w2*c2.B + 0.5),
		A:   c1.A*p + c2.A*(1-p),
		Loc: a.loc(),
	}, nil
}

func hsl(l *library, a args) (ast.Expression, error) {
	return hslWithAlpha(a, 1)
}

func hsla(l *library, a args) (ast.Expression, error) {
	alpha, err := a.number("$alpha")
	if err != nil {
		return nil, err
	}
	return hslWithAlpha(a, alpha.Value)
}

func hslWithAlpha(a args, alpha float64) (ast.Expression, error) {
	h, err := a.number("$hue")
	if err != nil {
		return nil, err
	}
	s, err := a.number("$saturation")
	if err != nil {
		return nil, err
	}
	lt, err := a.number("$lightness")
	if err != nil {
		return nil, err
	}
	return ast.ColorFromHSL(a.loc(), h.Value, s.Value, lt.Value, alpha), nil
}

func hue(l *library, a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	h, _, _ := c.HSL()
	return a.newNumber(h, "deg"), nil
}

func saturation(l *library, a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	_, s, _ := c.HSL()
	return a.newNumber(s, "%"), nil
}

func lightness(l *library, a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	_, _, lt := c.HSL()
	return a.newNumber(lt, "%"), nil
}

// shiftHSL applies fn to the HSL components of $color.
func shiftHSL(a args, fn func(h, s, l float64) (float64, float64, float64)) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	h, s, lt := fn(c.HSL())
	return ast.ColorFromHSL(a.loc(), h, s, lt, c.A), nil
}

func adjustHue(l *library, a args) (ast.Expression, error) {
	deg, err := a.number("$degrees")
	if err != nil {
		return nil, err
	}
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h + deg.Value, s, lt })
}

func lighten(l *library, a args) (ast.Expression, error) {
	amount, err := a.ranged("$amount", 0, 100)
	if err != nil {
		return nil, err
	}
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h, s, lt + amount })
}

func darken(l *library, a args) (ast.Expression, error) {
	amount, err := a.ranged("$amount", 0, 100)
	if err != nil {
		return nil, err
	}
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h, s, lt - amount })
}

func saturate(l *library, a args) (ast.Expression, error) {
	// saturate(50%) is also a CSS filter function
	if _, ok := a.value("$amount").(*ast.Number); !ok {
		return a.unquoted("saturate(" + l.text(a.value("$color")) + ")"), nil
	}
	amount, err := a.ranged("$amount", 0, 100)
	if err != nil {
		return nil, err
	}
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h, s + amount, lt })
}

func desaturate(l *library, a args) (ast.Expression, error) {
	amount, err := a.ranged("$amount", 0, 100)
	if err != nil {
		return nil, err
	}
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h, s - amount, lt })
}

func grayscale(l *library, a args) (ast.Expression, error) {
	if n, ok := a.value("$color").(*ast.Number); ok {
		return a.unquoted("grayscale(" + l.text(n) + ")"), nil
	}
	return shiftHSL(a, func(h, _, lt float64) (float64, float64, float64) { return h, 0, lt })
}

func complement(l *library, a args) (ast.Expression, error) {
	return shiftHSL(a, func(h, s, lt float64) (float64, float64, float64) { return h - 180, s, lt })
}

func invert(l *library, a args) (ast.Expression, error) {
	if n, ok := a.value("$color").(*ast.Number); ok {
		return a.unquoted("invert(" + l.text(n) + ")"), nil
	}
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	return &ast.Color{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A, Loc: a.loc()}, nil
}

func alpha(l *library, a args) (ast.Expression, error) {
	switch v := a.value("$color").(type) {
	case *ast.String:
		// alpha(opacity=20) is an IE filter
		if _, isColor := ast.ColorByName(v.Loc, v.Value); !isColor || v.IsQuoted() {
			return a.unquoted("alpha(" + v.Value + ")"), nil
		}
	case *ast.Number:
		return a.unquoted("opacity(" + l.text(v) + ")"), nil
	}
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	return a.newNumber(c.A, ""), nil
}

func opacify(l *library, a args) (ast.Expression, error) {
	return shiftAlpha(a, 1)
}

func transparentize(l *library, a args) (ast.Expression, error) {
	return shiftAlpha(a, -1)
}

func shiftAlpha(a args, sign float64) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	amount, err := a.ranged("$amount", 0, 1)
	if err != nil {
		return nil, err
	}
	out := c.Clone()
	out.Loc = a.loc()
	out.A = clamp(c.A+sign*amount, 0, 1)
	return out, nil
}

var (
	rgbParams    = []string{"$red", "$green", "$blue"}
	hslParams    = []string{"$hue", "$saturation", "$lightness"}
	channelMax   = map[string]float64{"$red": 255, "$green": 255, "$blue": 255, "$hue": 360, "$saturation": 100, "$lightness": 100, "$alpha": 1}
	unboundedHue = math.Inf(1)
)

// colorEdit is the shared shape of adjust-color, scale-color and
// change-color: each given channel argument is checked against bounds and
// combined with the current channel value by apply.
type colorEdit struct {
	name   string
	bounds func(param string) (lo, hi float64)
	apply  func(cur, v, max float64) float64
}

func (e colorEdit) run(a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	vals := map[string]float64{}
	for _, p := range append(append([]string{"$alpha"}, rgbParams...), hslParams...) {
		if !a.given(p) {
			continue
		}
		lo, hi := e.bounds(p)
		v, err := a.ranged(p, lo, hi)
		if err != nil {
			return nil, err
		}
		vals[p] = v
	}
	touched := func(ps []string) bool {
		for _, p := range ps {
			if _, ok := vals[p]; ok {
				return true
			}
		}
		return false
	}
	set := func(cur float64, p string) float64 {
		if v, ok := vals[p]; ok {
			return e.apply(cur, v, channelMax[p])
		}
		return cur
	}

	isRGB, isHSL := touched(rgbParams), touched(hslParams)
	_, hasAlpha := vals["$alpha"]
	if isRGB && isHSL {
		return nil, fmt.Errorf("cannot specify both RGB and HSL values for `%s`", e.name)
	}
	out := c.Clone()
	out.Loc = a.loc()
	switch {
	case isRGB:
		out.R = clamp(set(c.R, "$red"), 0, 255)
		out.G = clamp(set(c.G, "$green"), 0, 255)
		out.B = clamp(set(c.B, "$blue"), 0, 255)
	case isHSL:
		h, s, lt := c.HSL()
		out = ast.ColorFromHSL(a.loc(), set(h, "$hue"), set(s, "$saturation"), set(lt, "$lightness"), c.A)
	case !hasAlpha:
		return nil, fmt.Errorf("not enough arguments for `%s`", e.name)
	}
	if hasAlpha {
		out.A = clamp(set(c.A, "$alpha"), 0, 1)
	}
	return out, nil
}

func adjustColor(l *library, a args) (ast.Expression, error) {
	return colorEdit{
		name: "adjust-color",
		bounds: func(p string) (float64, float64) {
			if p == "$hue" {
				return -unboundedHue, unboundedHue
			}
			return -channelMax[p], channelMax[p]
		},
		apply: func(cur, v, _ float64) float64 { return cur + v },
	}.run(a)
}

func scaleColor(l *library, a args) (ast.Expression, error) {
	return colorEdit{
		name:   "scale-color",
		bounds: func(string) (float64, float64) { return -100, 100 },
		apply: func(cur, v, max float64) float64 {
			if v > 0 {
				return cur + (max-cur)*v/100
			}
			return cur + cur*v/100
		},
	}.run(a)
}

func changeColor(l *library, a args) (ast.Expression, error) {
	return colorEdit{
		name: "change-color",
		bounds: func(p string) (float64, float64) {
			if p == "$hue" {
				return -unboundedHue, unboundedHue
			}
			return 0, channelMax[p]
		},
		apply: func(_, v, _ float64) float64 { return v },
	}.run(a)
}

func ieHexStr(l *library, a args) (ast.Expression, error) {
	c, err := a.color("$color")
	if err != nil {
		return nil, err
	}
	round := func(v, max float64) int { return int(floor(clamp(v, 0, max) + 0.5)) }
	hex := fmt.Sprintf("#%02X%02X%02X%02X", round(c.A*255, 255), round(c.R, 255), round(c.G, 255), round(c.B, 255))
	return a.unquoted(hex), nil
}
