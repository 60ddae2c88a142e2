package pixel

import (
	"hash/fnv"
	"math/rand/v2"
)

// SpriteSize is the edge length of a monster sprite in pixels.
const SpriteSize = 12

// Sprite pixel values.
const (
	Empty uint8 = iota
	Body
	Shade
	Glow
)

// Grid is a square sprite of pixel values 0-3.
type Grid [][]uint8

// Sprite builds the pixel pattern for a sprite reference such as
// "monster_07". The same name always yields the same mirror-symmetric
// pattern.
func Sprite(name string) Grid {
	h := fnv.New64a()
	h.Write([]byte(name))
	seed := h.Sum64()
	rng := rand.New(rand.NewPCG(seed, seed>>7|1))

	half := SpriteSize / 2
	g := make(Grid, SpriteSize)
	for y := range g {
		g[y] = make([]uint8, SpriteSize)
	}

	for y := 1; y < SpriteSize-1; y++ {
		for x := 1; x < half; x++ {
			// Denser toward the center column and the middle rows.
			p := 0.25 + 0.08*float64(x)
			if y > 2 && y < SpriteSize-3 {
				p += 0.2
			}
			if rng.Float64() < p {
				v := Body
				if rng.Float64() < 0.2 {
					v = Shade
				}
				g[y][x] = v
			}
		}
		// Keep the body connected down the middle.
		if y > 1 && y < SpriteSize-2 {
			g[y][half-1] = Body
		}
	}

	// Eyes
	eyeRow := 3 + rng.IntN(2)
	eyeCol := 2 + rng.IntN(half-3)
	g[eyeRow][eyeCol] = Glow

	for y := range g {
		for x := 0; x < half; x++ {
			g[y][SpriteSize-1-x] = g[y][x]
		}
	}
	return g
}
