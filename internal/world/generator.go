package world

import (
	"strings"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/resinfarm/internal/vec"
	"github.com/annel0/resinfarm/internal/world/block"
)

const (
	barkedLogPrefix = "log-barked-"
	barkedLogSuffix = "-ud"
)

// Generator засевает квадрат мира колоннами бревён с корой
type Generator struct {
	Seed        int64
	Size        int     // Сторона квадрата в блоках, центр в (0, 0)
	SurfaceY    int     // Высота основания стволов
	NoiseScale  float64 // Масштаб шума плотности леса
	Threshold   float64 // Выше порога – ставим ствол
	TrunkHeight int     // Максимальная высота ствола

	density *perlin.Perlin
	species *perlin.Perlin
}

// NewGenerator создаёт генератор с настройками по умолчанию
func NewGenerator(seed int64, size int) *Generator {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Generator{
		Seed:        seed,
		Size:        size,
		SurfaceY:    64,
		NoiseScale:  0.15,
		Threshold:   0.62,
		TrunkHeight: 4,
		density:     perlin.NewPerlin(alpha, beta, n, seed),
		species:     perlin.NewPerlin(alpha, beta, n, seed+42),
	}
}

// noise01 возвращает шум в диапазоне от 0 до 1
func noise01(p *perlin.Perlin, x, y float64) float64 {
	v := (p.Noise2D(x, y) + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// barkedLogs возвращает коды бревён, которые можно подрезать ("log-barked-<wood>-ud")
func barkedLogs(types *block.TypeTable) []block.Code {
	var codes []block.Code
	types.Each(func(bt *block.BlockType) {
		if strings.HasPrefix(bt.Code.Path, barkedLogPrefix) && strings.HasSuffix(bt.Code.Path, barkedLogSuffix) {
			codes = append(codes, bt.Code)
		}
	})
	return codes
}

// Generate ставит стволы в мир и возвращает число поставленных блоков.
// Результат детерминирован для сида и набора типов.
func (g *Generator) Generate(w *World) (int, error) {
	logs := barkedLogs(w.Types())
	if len(logs) == 0 {
		return 0, nil
	}

	half := g.Size / 2
	placed := 0
	for x := -half; x < g.Size-half; x++ {
		for z := -half; z < g.Size-half; z++ {
			// Стволы не ставим вплотную друг к другу
			if (x+z)%2 != 0 {
				continue
			}
			nx, nz := float64(x)*g.NoiseScale, float64(z)*g.NoiseScale
			d := noise01(g.density, nx, nz)
			if d < g.Threshold {
				continue
			}

			code := logs[int(noise01(g.species, nx, nz)*float64(len(logs)))%len(logs)]
			height := 1 + int((d-g.Threshold)/(1-g.Threshold)*float64(g.TrunkHeight))
			if height > g.TrunkHeight {
				height = g.TrunkHeight
			}

			base := vec.Vec3{X: x, Y: g.SurfaceY, Z: z}
			for i := 0; i < height; i++ {
				if err := w.PlaceBlock(base.Up(i), code); err != nil {
					return placed, err
				}
				placed++
			}
		}
	}
	return placed, nil
}
