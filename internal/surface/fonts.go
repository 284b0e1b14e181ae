package surface

import (
	"sync"

	"easel/internal/element"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

var goRegular = sync.OnceValue(func() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil
	}
	return f
})

type fontCache struct {
	faces map[float64]font.Face
}

func newFontCache() *fontCache {
	return &fontCache{faces: make(map[float64]font.Face)}
}

func (c *fontCache) face(size float64) font.Face {
	if size <= 0 {
		size = element.RenderFontSize
	}
	if f, ok := c.faces[size]; ok {
		return f
	}
	ttf := goRegular()
	if ttf == nil {
		return basicfont.Face7x13
	}
	f := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[size] = f
	return f
}
