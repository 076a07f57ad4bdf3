package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// biomeCodes are the 2-letter tags of the eight seeded biomes.
var biomeCodes = []string{"RF", "DO", "CR", "AM", "AT", "TF", "AS", "MF"}

// CodeGenerator produces customer-facing confirmation codes of the form
// BIO-<BIOME2>-<YYYYMMDD>-<NNNN>. Codes are a display reference only;
// collisions are possible and acceptable.
type CodeGenerator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewCodeGenerator wires an explicit clock and random source, mainly
// for tests.
func NewCodeGenerator(now func() time.Time, intn func(n int) int) *CodeGenerator {
	return &CodeGenerator{now: now, intn: intn}
}

// DefaultCodeGenerator uses the wall clock and math/rand.
func DefaultCodeGenerator() *CodeGenerator {
	return NewCodeGenerator(time.Now, rand.Intn)
}

// Generate returns a fresh confirmation code.
func (g *CodeGenerator) Generate() string {
	date := g.now().Format("20060102")
	code := biomeCodes[g.intn(len(biomeCodes))]
	number := g.intn(10000)
	return fmt.Sprintf("BIO-%s-%s-%04d", code, date, number)
}
