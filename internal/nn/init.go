package nn

import (
	"math"
	"math/rand"
)

// XavierInit fills p with values drawn from the Xavier/Glorot uniform
// distribution U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
func XavierInit(p *Parameter, fanIn, fanOut int) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	for i := range p.Data {
		p.Data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
	}
}
