package ast

import (
	"math"
	"strconv"
	"strings"
)

type namedColor struct {
	name string
	rgb  uint32
}

// namedColors lists the CSS color keywords. When two names share a value the
// first one listed is used for output.
var namedColors = []namedColor{
	{"aliceblue", 0xf0f8ff},
	{"antiquewhite", 0xfaebd7},
	{"aqua", 0x00ffff},
	{"aquamarine", 0x7fffd4},
	{"azure", 0xf0ffff},
	{"beige", 0xf5f5dc},
	{"bisque", 0xffe4c4},
	{"black", 0x000000},
	{"blanchedalmond", 0xffebcd},
	{"blue", 0x0000ff},
	{"blueviolet", 0x8a2be2},
	{"brown", 0xa52a2a},
	{"burlywood", 0xdeb887},
	{"cadetblue", 0x5f9ea0},
	{"chartreuse", 0x7fff00},
	{"chocolate", 0xd2691e},
	{"coral", 0xff7f50},
	{"cornflowerblue", 0x6495ed},
	{"cornsilk", 0xfff8dc},
	{"crimson", 0xdc143c},
	{"cyan", 0x00ffff},
	{"darkblue", 0x00008b},
	{"darkcyan", 0x008b8b},
	{"darkgoldenrod", 0xb8860b},
	{"darkgray", 0xa9a9a9},
	{"darkgrey", 0xa9a9a9},
	{"darkgreen", 0x006400},
	{"darkkhaki", 0xbdb76b},
	{"darkmagenta", 0x8b008b},
	{"darkolivegreen", 0x556b2f},
	{"darkorange", 0xff8c00},
	{"darkorchid", 0x9932cc},
	{"darkred", 0x8b0000},
	{"darksalmon", 0xe9967a},
	{"darkseagreen", 0x8fbc8f},
	{"darkslateblue", 0x483d8b},
	{"darkslategray", 0x2f4f4f},
	{"darkslategrey", 0x2f4f4f},
	{"darkturquoise", 0x00ced1},
	{"darkviolet", 0x9400d3},
	{"deeppink", 0xff1493},
	{"deepskyblue", 0x00bfff},
	{"dimgray", 0x696969},
	{"dimgrey", 0x696969},
	{"dodgerblue", 0x1e90ff},
	{"firebrick", 0xb22222},
	{"floralwhite", 0xfffaf0},
	{"forestgreen", 0x228b22},
	{"fuchsia", 0xff00ff},
	{"gainsboro", 0xdcdcdc},
	{"ghostwhite", 0xf8f8ff},
	{"gold", 0xffd700},
	{"goldenrod", 0xdaa520},
	{"gray", 0x808080},
	{"grey", 0x808080},
	{"green", 0x008000},
	{"greenyellow", 0xadff2f},
	{"honeydew", 0xf0fff0},
	{"hotpink", 0xff69b4},
	{"indianred", 0xcd5c5c},
	{"indigo", 0x4b0082},
	{"ivory", 0xfffff0},
	{"khaki", 0xf0e68c},
	{"lavender", 0xe6e6fa},
	{"lavenderblush", 0xfff0f5},
	{"lawngreen", 0x7cfc00},
	{"lemonchiffon", 0xfffacd},
	{"lightblue", 0xadd8e6},
	{"lightcoral", 0xf08080},
	{"lightcyan", 0xe0ffff},
	{"lightgoldenrodyellow", 0xfafad2},
	{"lightgray", 0xd3d3d3},
	{"lightgrey", 0xd3d3d3},
	{"lightgreen", 0x90ee90},
	{"lightpink", 0xffb6c1},
	{"lightsalmon", 0xffa07a},
	{"lightseagreen", 0x20b2aa},
	{"lightskyblue", 0x87cefa},
	{"lightslategray", 0x778899},
	{"lightslategrey", 0x778899},
	{"lightsteelblue", 0xb0c4de},
	{"lightyellow", 0xffffe0},
	{"lime", 0x00ff00},
	{"limegreen", 0x32cd32},
	{"linen", 0xfaf0e6},
	{"magenta", 0xff00ff},
	{"maroon", 0x800000},
	{"mediumaquamarine", 0x66cdaa},
	{"mediumblue", 0x0000cd},
	{"mediumorchid", 0xba55d3},
	{"mediumpurple", 0x9370db},
	{"mediumseagreen", 0x3cb371},
	{"mediumslateblue", 0x7b68ee},
	{"mediumspringgreen", 0x00fa9a},
	{"mediumturquoise", 0x48d1cc},
	{"mediumvioletred", 0xc71585},
	{"midnightblue", 0x191970},
	{"mintcream", 0xf5fffa},
	{"mistyrose", 0xffe4e1},
	{"moccasin", 0xffe4b5},
	{"navajowhite", 0xffdead},
	{"navy", 0x000080},
	{"oldlace", 0xfdf5e6},
	{"olive", 0x808000},
	{"olivedrab", 0x6b8e23},
	{"orange", 0xffa500},
	{"orangered", 0xff4500},
	{"orchid", 0xda70d6},
	{"palegoldenrod", 0xeee8aa},
	{"palegreen", 0x98fb98},
	{"paleturquoise", 0xafeeee},
	{"palevioletred", 0xdb7093},
	{"papayawhip", 0xffefd5},
	{"peachpuff", 0xffdab9},
	{"peru", 0xcd853f},
	{"pink", 0xffc0cb},
	{"plum", 0xdda0dd},
	{"powderblue", 0xb0e0e6},
	{"purple", 0x800080},
	{"rebeccapurple", 0x663399},
	{"red", 0xff0000},
	{"rosybrown", 0xbc8f8f},
	{"royalblue", 0x4169e1},
	{"saddlebrown", 0x8b4513},
	{"salmon", 0xfa8072},
	{"sandybrown", 0xf4a460},
	{"seagreen", 0x2e8b57},
	{"seashell", 0xfff5ee},
	{"sienna", 0xa0522d},
	{"silver", 0xc0c0c0},
	{"skyblue", 0x87ceeb},
	{"slateblue", 0x6a5acd},
	{"slategray", 0x708090},
	{"slategrey", 0x708090},
	{"snow", 0xfffafa},
	{"springgreen", 0x00ff7f},
	{"steelblue", 0x4682b4},
	{"tan", 0xd2b48c},
	{"teal", 0x008080},
	{"thistle", 0xd8bfd8},
	{"tomato", 0xff6347},
	{"turquoise", 0x40e0d0},
	{"violet", 0xee82ee},
	{"wheat", 0xf5deb3},
	{"white", 0xffffff},
	{"whitesmoke", 0xf5f5f5},
	{"yellow", 0xffff00},
	{"yellowgreen", 0x9acd32},
}

var (
	colorsByName = map[string]uint32{}
	namesByColor = map[uint32]string{}
)

func init() {
	for _, c := range namedColors {
		colorsByName[c.name] = c.rgb
		if _, ok := namesByColor[c.rgb]; !ok {
			namesByColor[c.rgb] = c.name
		}
	}
}

// ColorByName looks up a CSS color keyword, ignoring case. The result keeps
// the keyword as its display text.
func ColorByName(loc SourceLocation, name string) (*Color, bool) {
	lower := strings.ToLower(name)
	if lower == "transparent" {
		return &Color{A: 0, Disp: name, Loc: loc}, true
	}
	rgb, ok := colorsByName[lower]
	if !ok {
		return nil, false
	}
	return &Color{
		R:    float64(rgb >> 16 & 0xff),
		G:    float64(rgb >> 8 & 0xff),
		B:    float64(rgb & 0xff),
		A:    1,
		Disp: name,
		Loc:  loc,
	}, true
}

// ColorName returns the keyword for an opaque color, if one exists.
func ColorName(c *Color) (string, bool) {
	if c.A < 1 {
		if c.A == 0 && c.R == 0 && c.G == 0 && c.B == 0 {
			return "transparent", true
		}
		return "", false
	}
	name, ok := namesByColor[c.packed()]
	return name, ok
}

// ParseHexColor parses `#rgb` or `#rrggbb`.
func ParseHexColor(loc SourceLocation, text string) (*Color, bool) {
	hex := strings.TrimPrefix(text, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return &Color{
		R:    float64(v >> 16 & 0xff),
		G:    float64(v >> 8 & 0xff),
		B:    float64(v & 0xff),
		A:    1,
		Disp: text,
		Loc:  loc,
	}, true
}

func clampChannel(v float64) uint32 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint32(v)
}

func (c *Color) packed() uint32 {
	return clampChannel(c.R)<<16 | clampChannel(c.G)<<8 | clampChannel(c.B)
}

// Hex returns the color as #rrggbb, ignoring alpha.
func (c *Color) Hex() string {
	s := strconv.FormatUint(uint64(c.packed()), 16)
	return "#" + strings.Repeat("0", 6-len(s)) + s
}

// ShortHex returns #rgb when every channel repeats its digit, else #rrggbb.
func (c *Color) ShortHex() string {
	h := c.Hex()
	if h[1] == h[2] && h[3] == h[4] && h[5] == h[6] {
		return string([]byte{'#', h[1], h[3], h[5]})
	}
	return h
}

// Clone returns a copy of c without its display text.
func (c *Color) Clone() *Color {
	return &Color{R: c.R, G: c.G, B: c.B, A: c.A, Loc: c.Loc}
}

// HSL returns hue in degrees and saturation and lightness in percent.
func (c *Color) HSL() (h, s, l float64) {
	r, g, b := c.R/255, c.G/255, c.B/255
	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	delta := hi - lo
	l = (hi + lo) / 2

	if delta != 0 {
		if l < 0.5 {
			s = delta / (hi + lo)
		} else {
			s = delta / (2 - hi - lo)
		}
		switch hi {
		case r:
			h = (g - b) / delta
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/delta + 2
		default:
			h = (r-g)/delta + 4
		}
		h *= 60
	}
	return h, s * 100, l * 100
}

// ColorFromHSL builds a color from hue in degrees and saturation and
// lightness in percent.
func ColorFromHSL(loc SourceLocation, h, s, l, a float64) *Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360
	s = math.Max(0, math.Min(100, s)) / 100
	l = math.Max(0, math.Min(100, l)) / 100

	var m2 float64
	if l <= 0.5 {
		m2 = l * (s + 1)
	} else {
		m2 = l + s - l*s
	}
	m1 := l*2 - m2
	return &Color{
		R:   hueToRGB(m1, m2, h+1.0/3) * 255,
		G:   hueToRGB(m1, m2, h) * 255,
		B:   hueToRGB(m1, m2, h-1.0/3) * 255,
		A:   a,
		Loc: loc,
	}
}

func hueToRGB(m1, m2, h float64) float64 {
	if h < 0 {
		h++
	}
	if h > 1 {
		h--
	}
	switch {
	case h*6 < 1:
		return m1 + (m2-m1)*h*6
	case h*2 < 1:
		return m2
	case h*3 < 2:
		return m1 + (m2-m1)*(2.0/3-h)*6
	default:
		return m1
	}
}
